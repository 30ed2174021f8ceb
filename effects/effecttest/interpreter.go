package effecttest

import (
	"context"
	"slices"

	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
)

var _ effectmodel.Interpreter = InterpreterFunc{}

// InterpreterFunc is an Interpreter made of a tag list and a function.
type InterpreterFunc struct {
	TagList []effectmodel.Tag
	Fn      func(ctx context.Context, d effectmodel.Description) effectmodel.Outcome
}

// FamilyFunc claims every tag of a family.
func FamilyFunc(f effectmodel.Family, fn func(ctx context.Context, d effectmodel.Description) effectmodel.Outcome) InterpreterFunc {
	return InterpreterFunc{TagList: effectmodel.TagsOf(f), Fn: fn}
}

func (i InterpreterFunc) Tags() []effectmodel.Tag { return slices.Clone(i.TagList) }

func (i InterpreterFunc) Execute(ctx context.Context, d effectmodel.Description) effectmodel.Outcome {
	return i.Fn(ctx, d)
}
