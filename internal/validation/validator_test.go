// Tripmatch - Trip Recommendation Service
// Copyright 2026 Pathfinder HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathfinderhq/tripmatch

package validation

import (
	"strings"
	"testing"
)

type sampleRequest struct {
	Budget     float64 `validate:"min=0"`
	Difficulty int     `validate:"min=0,max=3"`
	ThemeIDs   []int64 `validate:"omitempty,dive,gt=0"`
	Name       string  `validate:"required"`
}

func TestValidateStruct_Valid(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&sampleRequest{
		Budget:     1000,
		Difficulty: 2,
		ThemeIDs:   []int64{1, 2},
		Name:       "trek",
	})
	if err != nil {
		t.Errorf("ValidateStruct() = %v, want nil", err)
	}
}

func TestValidateStruct_SingleFailure(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&sampleRequest{Budget: -1, Difficulty: 1, Name: "trek"})
	if err == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}
	if len(err.Fields) != 1 {
		t.Fatalf("len(Fields) = %d, want 1", len(err.Fields))
	}
	if err.Fields[0].Field != "Budget" {
		t.Errorf("Field = %q, want Budget", err.Fields[0].Field)
	}
	if err.Fields[0].Tag != "min" {
		t.Errorf("Tag = %q, want min", err.Fields[0].Tag)
	}
	if !strings.Contains(err.Fields[0].Message, "at least 0") {
		t.Errorf("Message = %q, want min translation", err.Fields[0].Message)
	}
}

func TestValidateStruct_MultipleFailures(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&sampleRequest{Budget: -1, Difficulty: 5})
	if err == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}
	if len(err.Fields) != 3 {
		t.Fatalf("len(Fields) = %d, want 3 (budget, difficulty, name)", len(err.Fields))
	}

	msg := err.Error()
	for _, want := range []string{"at least 0", "at most 3", "required"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestValidateStruct_DiveIntoSlices(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&sampleRequest{Difficulty: 1, ThemeIDs: []int64{1, 0}, Name: "trek"})
	if err == nil {
		t.Fatal("ValidateStruct() = nil, want error for zero theme ID")
	}
	if err.Fields[0].Tag != "gt" {
		t.Errorf("Tag = %q, want gt", err.Fields[0].Tag)
	}
}

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}
