package props

import (
	"errors"
	"reflect"
	"testing"
)

func TestPropsOrder(t *testing.T) {
	p := New()
	p.Set("b", "1")
	p.Set("a", "2")
	p.Set("c", "3")
	p.Set("a", "4") // re-set keeps slot

	want := []string{"b", "a", "c"}
	if got := p.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	if v := p.Value("a"); v != "4" {
		t.Errorf("Value(a) = %q, want %q", v, "4")
	}

	if !p.Delete("b") {
		t.Fatal("Delete(b) reported missing key")
	}
	if p.Delete("b") {
		t.Error("second Delete(b) should report false")
	}
	if got := p.Keys(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("Keys() after delete = %v", got)
	}
	if v, _ := p.Get("c"); v != "3" {
		t.Errorf("index not rebuilt after delete: Get(c) = %q", v)
	}
}

func TestPropsTakeAndDefault(t *testing.T) {
	p := New(Item{"media.class", "Audio/Sink"})
	p.SetDefault("media.class", "Audio/Source")
	p.SetDefault("node.passive", "true")

	if v := p.Value("media.class"); v != "Audio/Sink" {
		t.Errorf("SetDefault overwrote existing value: %q", v)
	}
	if v, ok := p.Take("node.passive"); !ok || v != "true" {
		t.Errorf("Take(node.passive) = %q, %v", v, ok)
	}
	if p.Has("node.passive") {
		t.Error("Take should remove the key")
	}
	if _, ok := p.Take("missing"); ok {
		t.Error("Take(missing) should report false")
	}
}

func TestPropsClone(t *testing.T) {
	p := New(Item{"a", "1"})
	c := p.Clone()
	c.Set("a", "2")
	c.Set("b", "3")
	if p.Value("a") != "1" || p.Has("b") {
		t.Error("Clone shares state with original")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		want []Item
	}{
		{"empty", "", nil},
		{"whitespace only", "  \t ", nil},
		{"bare values", "plugin=foo label=bar", []Item{{"plugin", "foo"}, {"label", "bar"}}},
		{"double quoted with spaces", `source_name="my source"`, []Item{{"source_name", "my source"}}},
		{"single quoted", `a='x y'`, []Item{{"a", "x y"}}},
		{"nested quotes", `source_properties="device.description='Noise Gate'"`,
			[]Item{{"source_properties", "device.description='Noise Gate'"}}},
		{"escaped quote", `a="say \"hi\""`, []Item{{"a", `say "hi"`}}},
		{"empty value", "a= b=c", []Item{{"a", ""}, {"b", "c"}}},
		{"empty quoted value", `a=""`, []Item{{"a", ""}}},
		{"duplicate last wins", "a=1 b=2 a=3", []Item{{"a", "3"}, {"b", "2"}}},
		{"comma lists untouched", "channel_map=FL,FR control=1,2.5,-3", []Item{{"channel_map", "FL,FR"}, {"control", "1,2.5,-3"}}},
		{"extra whitespace", "  a=1\n\tb=2  ", []Item{{"a", "1"}, {"b", "2"}}},
		{"equals inside value", "a=b=c", []Item{{"a", "b=c"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.arg)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.arg, err)
			}
			if got := p.Items(); !reflect.DeepEqual(got, tt.want) && !(len(got) == 0 && len(tt.want) == 0) {
				t.Errorf("Parse(%q) = %v, want %v", tt.arg, got, tt.want)
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		arg  string
	}{
		{"unterminated double quote", `a="unterminated`},
		{"unterminated single quote", `a='x b=c`},
		{"dangling escape", `a="x\`},
		{"missing equals", "plugin"},
		{"missing equals after pair", "a=1 junk"},
		{"empty key", "=value"},
		{"text after closing quote", `a="x"y`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.arg)
			if !errors.Is(err, ErrMalformedArgument) {
				t.Fatalf("Parse(%q) error = %v, want ErrMalformedArgument", tt.arg, err)
			}
			if p != nil {
				t.Error("Parse should not return partial state on error")
			}
		})
	}
}

func TestUpdateLeavesBagOnError(t *testing.T) {
	p := New(Item{"node.passive", "true"})
	if err := p.Update(`a=1 b="open`); err == nil {
		t.Fatal("expected error")
	}
	if p.Has("a") {
		t.Error("failed Update must not apply any pair")
	}
}
