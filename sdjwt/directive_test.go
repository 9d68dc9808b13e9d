package sdjwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForceAllDirectiveHidesEverything(t *testing.T) {
	dir := ForceAllDirective()
	assert.True(t, dir.fieldHidden("anything"))
	assert.True(t, dir.elementHidden(0))

	sub := dir.fieldDirective("anything")
	assert.True(t, sub.ForceAll)
}

func TestHideFieldMarksOnlyNamedField(t *testing.T) {
	dir := Directive{}.HideField("email")
	assert.True(t, dir.fieldHidden("email"))
	assert.False(t, dir.fieldHidden("given_name"))
}

func TestHideElementsIsPositional(t *testing.T) {
	dir := HideElements(true, false, true)
	assert.True(t, dir.elementHidden(0))
	assert.False(t, dir.elementHidden(1))
	assert.True(t, dir.elementHidden(2))
	assert.False(t, dir.elementHidden(3)) // out of range: not hidden
}

func TestWithFieldRecursesWithoutHiding(t *testing.T) {
	sub := Directive{}.HideField("inner")
	dir := Directive{}.WithField("outer", sub)

	assert.False(t, dir.fieldHidden("outer"))
	assert.True(t, dir.fieldDirective("outer").fieldHidden("inner"))
}
