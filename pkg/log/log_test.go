package log

import (
	"context"
	"testing"
)

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *Options)
		wantErr int
	}{
		{"defaults", func(o *Options) {}, 0},
		{"json format", func(o *Options) { o.Format = "json" }, 0},
		{"bad format", func(o *Options) { o.Format = "xml" }, 1},
		{"bad level", func(o *Options) { o.Level = "loud" }, 1},
		{"both bad", func(o *Options) { o.Format = "xml"; o.Level = "loud" }, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOptions()
			tt.mutate(o)
			if errs := o.Validate(); len(errs) != tt.wantErr {
				t.Errorf("Validate() returned %d errors (%v), want %d", len(errs), errs, tt.wantErr)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) != Std() {
		t.Error("empty context should fall back to the global logger")
	}

	l := NewNopLogger().WithName("request")
	ctx := NewContext(context.Background(), l)
	if FromContext(ctx) != l {
		t.Error("FromContext did not return the stored logger")
	}
}

func TestSetLevel(t *testing.T) {
	prev := Level()
	t.Cleanup(func() { _ = SetLevel(prev) })

	if err := SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel(debug) = %v", err)
	}
	if Level() != "debug" {
		t.Errorf("Level() = %q, want debug", Level())
	}
	if err := SetLevel("chatty"); err == nil {
		t.Error("SetLevel should reject unknown levels")
	}
	if Level() != "debug" {
		t.Errorf("a rejected level must not change the current one, got %q", Level())
	}
}
