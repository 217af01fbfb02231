package casestudy

import (
	"testing"

	"github.com/pkg/errors"
)

func TestScorecard_CheckShape(t *testing.T) {
	tests := []struct {
		name    string
		sc      Scorecard
		wantErr bool
	}{
		{name: "zero", sc: Scorecard{}},
		{name: "max", sc: Scorecard{ProblemDefinition: 5, Analysis: 5, Alternatives: 5, Recommendation: 5, Overall: 5}},
		{name: "overall too high", sc: Scorecard{Overall: MaxScore + 1}, wantErr: true},
		{name: "negative analysis", sc: Scorecard{Analysis: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sc.CheckShape()
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckShape() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && errors.Cause(err) != errBadScorecard {
				t.Errorf("CheckShape() error cause = %v, want %v", errors.Cause(err), errBadScorecard)
			}
		})
	}
}
