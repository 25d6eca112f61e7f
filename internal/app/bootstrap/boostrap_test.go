package bootstrap

import (
	"context"
	"errors"
	"testing"
)

func TestRunPhasesStopsOnFirstError(t *testing.T) {
	var ran []string
	step := func(name string, err error) phase {
		return phase{name: name, run: func(context.Context) error {
			ran = append(ran, name)
			return err
		}}
	}

	result, err := runPhases(context.Background(), []phase{
		step("extensions", nil),
		step("migrations", errors.New("syntax error")),
		step("seeds", nil),
	})
	if err == nil {
		t.Fatal("erreur attendue")
	}
	if len(ran) != 2 {
		t.Errorf("phases exécutées: %v", ran)
	}
	if result.Success || len(result.PhasesExecuted) != 2 || result.PhasesExecuted[1].Error != "syntax error" {
		t.Errorf("résultat inattendu: %+v", result)
	}
}

func TestRunPhasesSuccess(t *testing.T) {
	result, err := runPhases(context.Background(), []phase{
		{name: "a", run: func(context.Context) error { return nil }},
		{name: "b", run: func(context.Context) error { return nil }},
	})
	if err != nil || !result.Success || len(result.PhasesExecuted) != 2 {
		t.Fatalf("résultat: %+v, %v", result, err)
	}
}
