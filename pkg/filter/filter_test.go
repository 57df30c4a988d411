package filter_test

import (
	"errors"
	"testing"

	"github.com/datarefinerylab/BatchPlan/pkg/filter"
	"github.com/datarefinerylab/BatchPlan/pkg/model"
)

func wall(name string) model.Element {
	return model.Element{ID: "id-" + name, TypeTag: model.TagWall, Name: name}
}

func tagged(tag string) model.Element {
	return model.Element{ID: "id-" + tag, TypeTag: tag, Name: tag + " 1"}
}

func TestMatchByTag(t *testing.T) {
	f, err := filter.New(`(== (tag) "Wall")`)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cases := []struct {
		el   model.Element
		want bool
	}{
		{tagged(model.TagWall), true},
		{tagged(model.TagColumn), false},
		{tagged(model.TagSlab), false},
	}
	for _, c := range cases {
		got, err := f.Match(c.el)
		if err != nil {
			t.Fatalf("Match(%s): %v", c.el.TypeTag, err)
		}
		if got != c.want {
			t.Errorf("Match(%s) = %v, want %v", c.el.TypeTag, got, c.want)
		}
	}
}

func TestOrExpression(t *testing.T) {
	f, err := filter.New(`(or (== (tag) "Wall") (== (tag) "Column"))`)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for tag, want := range map[string]bool{
		model.TagWall:   true,
		model.TagColumn: true,
		model.TagSlab:   false,
		model.TagDoor:   false,
	} {
		got, err := f.Match(tagged(tag))
		if err != nil {
			t.Fatalf("Match(%s): %v", tag, err)
		}
		if got != want {
			t.Errorf("Match(%s) = %v, want %v", tag, got, want)
		}
	}
}

func TestNameAccessor(t *testing.T) {
	f, err := filter.New(`(== (name) "South Wall")`)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ok, _ := f.Match(wall("South Wall")); !ok {
		t.Error("exact name did not match")
	}
	if ok, _ := f.Match(wall("North Wall")); ok {
		t.Error("wrong name matched")
	}
}

func TestNonBoolResultIsTruthy(t *testing.T) {
	f, err := filter.New(`(tag)`)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ok, err := f.Match(tagged(model.TagWall)); err != nil || !ok {
		t.Errorf("string result should keep the element: ok=%v err=%v", ok, err)
	}
}

func TestKeepPreservesOrder(t *testing.T) {
	f, err := filter.New(`(or (== (tag) "Wall") (== (tag) "Column"))`)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	in := []model.Element{tagged(model.TagWall), tagged(model.TagSlab), tagged(model.TagColumn)}
	kept, err := f.Keep(in)
	if err != nil {
		t.Fatalf("Keep: %v", err)
	}
	if len(kept) != 2 || kept[0].TypeTag != model.TagWall || kept[1].TypeTag != model.TagColumn {
		t.Errorf("kept = %v", kept)
	}
}

func TestCompileErrors(t *testing.T) {
	cases := []string{
		``,
		`(== (tag) "Wall"`, // unbalanced
		`(frobnicate)`,     // unknown function
	}
	for _, src := range cases {
		_, err := filter.New(src)
		if err == nil {
			t.Errorf("New(%q) succeeded, want error", src)
			continue
		}
		var ce *filter.CompileError
		if !errors.As(err, &ce) {
			t.Errorf("New(%q) error %T is not a CompileError", src, err)
		}
	}
}

func TestFilterIsReusable(t *testing.T) {
	f, err := filter.New(`(== (tag) "Wall")`)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 3; i++ {
		if ok, err := f.Match(tagged(model.TagWall)); err != nil || !ok {
			t.Fatalf("iteration %d: ok=%v err=%v", i, ok, err)
		}
		if ok, err := f.Match(tagged(model.TagSlab)); err != nil || ok {
			t.Fatalf("iteration %d: ok=%v err=%v", i, ok, err)
		}
	}
}
