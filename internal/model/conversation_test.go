package model

import "testing"

func TestPairKeyFor(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want string
	}{
		{"ordered", 1, 2, "1:2"},
		{"reversed", 2, 1, "1:2"},
		{"large ids", 900000, 31, "31:900000"},
		{"equal", 7, 7, "7:7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PairKeyFor(tt.a, tt.b); got != tt.want {
				t.Fatalf("got=%q want=%q", got, tt.want)
			}
		})
	}
}

func TestHasParticipant(t *testing.T) {
	cv := Conversation{UserLowID: 3, UserHighID: 9}
	if !cv.HasParticipant(3) || !cv.HasParticipant(9) {
		t.Fatalf("participants not recognized")
	}
	if cv.HasParticipant(4) {
		t.Fatalf("non-participant recognized")
	}
}
