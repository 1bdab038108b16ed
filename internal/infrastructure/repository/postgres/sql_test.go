package postgres

import "testing"

func TestNullString(t *testing.T) {
	t.Run("keeps value", func(t *testing.T) {
		v := "LSU"
		got := nullString(&v)
		if !got.Valid || got.String != "LSU" {
			t.Fatalf("unexpected null string: %+v", got)
		}
	})

	t.Run("nil and blank are null", func(t *testing.T) {
		blank := "  "
		if nullString(nil).Valid || nullString(&blank).Valid {
			t.Fatalf("expected null for nil and blank input")
		}
	})
}

func TestChunk(t *testing.T) {
	got := chunk([]int{1, 2, 3, 4, 5}, 2)
	if len(got) != 3 || len(got[2]) != 1 || got[2][0] != 5 {
		t.Fatalf("unexpected chunks: %v", got)
	}
	if len(chunk([]int{}, 2)) != 0 {
		t.Fatalf("expected no chunks for empty input")
	}
}
