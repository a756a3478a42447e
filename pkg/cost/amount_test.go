package cost

import (
	"encoding/json"
	"math"
	"sort"
	"testing"
)

func TestAmount_JSON(t *testing.T) {
	type report struct {
		Total Amount `json:"total"`
	}

	tests := []struct {
		name string
		in   Amount
		want string
	}{
		{"finite", 12.5, `{"total":12.5}`},
		{"integer", 400, `{"total":400}`},
		{"unbounded", Unbounded, `{"total":"Infinity"}`},
		{"nan", Amount(math.NaN()), `{"total":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(report{Total: tt.in})
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal() = %s, want %s", data, tt.want)
			}

			var back report
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			switch {
			case math.IsNaN(float64(tt.in)):
				if !math.IsNaN(float64(back.Total)) {
					t.Errorf("Unmarshal() = %v, want NaN", back.Total)
				}
			case back.Total != tt.in:
				t.Errorf("Unmarshal() = %v, want %v", back.Total, tt.in)
			}
		})
	}
}

func TestAmount_UnmarshalRejectsGarbage(t *testing.T) {
	var a Amount
	if err := json.Unmarshal([]byte(`"lots"`), &a); err == nil {
		t.Error("expected error for non-numeric string")
	}
}

func TestLess_NaNSortsLast(t *testing.T) {
	values := []float64{math.NaN(), 30, math.Inf(1), 10, math.NaN(), 20}
	sort.SliceStable(values, func(i, j int) bool { return Less(values[i], values[j]) })

	want := []float64{10, 20, 30, math.Inf(1)}
	for i, w := range want {
		if values[i] != w {
			t.Fatalf("position %d = %v, want %v (got %v)", i, values[i], w, values)
		}
	}
	for _, v := range values[4:] {
		if !math.IsNaN(v) {
			t.Errorf("expected NaN at the tail, got %v", values)
		}
	}
}

func TestRoundTo(t *testing.T) {
	if got := RoundTo(10.111, 1); got != 10.1 {
		t.Errorf("RoundTo(10.111, 1) = %v", got)
	}
	if got := RoundTo(math.Inf(1), 1); !math.IsInf(got, 1) {
		t.Errorf("RoundTo(+Inf) = %v", got)
	}
}
