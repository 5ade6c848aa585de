package all

import (
	"reflect"
	"testing"

	"champhelper/internal/storage"
)

func TestKindsRegistered(t *testing.T) {
	t.Parallel()

	want := []string{"file", "mssql", "postgres", "sqlite"}
	if got := storage.Kinds(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Kinds=%v, want %v", got, want)
	}
}
