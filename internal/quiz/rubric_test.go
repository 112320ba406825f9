package quiz

import "testing"

func TestLevelPoints(t *testing.T) {
	c := Criterion{Name: "clarity", MaxPoints: 10}
	cases := []struct {
		pct  int
		want int
	}{
		{100, 10},
		{80, 8},
		{75, 8}, // 7.5 rounds up
		{33, 3},
		{0, 0},
	}
	for _, tc := range cases {
		got := LevelPoints(c, CriterionLevel{Label: "l", Percentage: tc.pct})
		if got != tc.want {
			t.Errorf("LevelPoints(%d%% of 10) = %d, want %d", tc.pct, got, tc.want)
		}
	}
}

func TestRubricEvaluate(t *testing.T) {
	r := Rubric{
		ID:   "r1",
		Name: "Essay rubric",
		Criteria: []Criterion{
			{Name: "argument", MaxPoints: 6, Levels: []CriterionLevel{
				{Label: "excellent", Percentage: 100},
				{Label: "adequate", Percentage: 50},
				{Label: "weak", Percentage: 10},
			}},
		},
	}
	pts, err := r.Evaluate("argument", "adequate")
	if err != nil {
		t.Fatal(err)
	}
	if pts != 3 {
		t.Fatalf("adequate = %d points, want 3", pts)
	}
	if _, err := r.Evaluate("argument", "superb"); err == nil {
		t.Fatal("unknown level must fail")
	}
	if _, err := r.Evaluate("style", "adequate"); err == nil {
		t.Fatal("unknown criterion must fail")
	}
}

func TestRubricValidate(t *testing.T) {
	ok := Rubric{Name: "r", Criteria: []Criterion{
		{Name: "c", MaxPoints: 5, Levels: []CriterionLevel{{Label: "full", Percentage: 100}}},
	}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid rubric rejected: %v", err)
	}

	bad := []Rubric{
		{Name: "", Criteria: ok.Criteria},
		{Name: "r"}, // no criteria
		{Name: "r", Criteria: []Criterion{{Name: "c", MaxPoints: 0, Levels: ok.Criteria[0].Levels}}},
		{Name: "r", Criteria: []Criterion{{Name: "c", MaxPoints: 5}}}, // no levels
		{Name: "r", Criteria: []Criterion{{Name: "c", MaxPoints: 5, Levels: []CriterionLevel{{Label: "x", Percentage: 130}}}}},
	}
	for i, r := range bad {
		if err := r.Validate(); err == nil {
			t.Errorf("case %d: invalid rubric accepted", i)
		}
	}
}
