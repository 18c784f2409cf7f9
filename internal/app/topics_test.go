package app_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"trustwatch/internal/app"
	"trustwatch/internal/domain"
)

func writeTopicsFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "topics.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportTopics_DerivesSearchTerms(t *testing.T) {
	path := writeTopicsFile(t, `{
		"customer_service": "Customer Service",
		"deliveries": "Deliveries",
		"gas": "Gas",
		"Shipping_Speed": "Shipping Speed"
	}`)
	repo := &fakeRepo{}
	imp := app.NewTopicImporter(repo, zerolog.Nop())

	n, err := imp.ImportFile(context.Background(), path)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if n != 4 || len(repo.storedTopics) != 1 {
		t.Fatalf("n=%d stored=%d", n, len(repo.storedTopics))
	}

	got := repo.storedTopics[0]
	want := []domain.Topic{
		{Key: "customer_service", DisplayName: "Customer Service",
			SearchTerms: []string{"customer service", "customer services"}},
		{Key: "deliveries", DisplayName: "Deliveries",
			SearchTerms: []string{"deliverie", "deliveries"}},
		{Key: "gas", DisplayName: "Gas",
			SearchTerms: []string{"gas", "gass"}},
		{Key: "shipping_speed", DisplayName: "Shipping Speed",
			SearchTerms: []string{"shipping speed", "shipping speeds"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("topics:\n got %+v\nwant %+v", got, want)
	}
}

func TestImportTopics_SkipsBlankEntries(t *testing.T) {
	path := writeTopicsFile(t, `{"": "Anon", "blank_name": "  ", "valid": "Valid"}`)
	repo := &fakeRepo{}
	imp := app.NewTopicImporter(repo, zerolog.Nop())

	n, err := imp.ImportFile(context.Background(), path)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if n != 1 || repo.storedTopics[0][0].Key != "valid" {
		t.Fatalf("n=%d topics=%+v", n, repo.storedTopics)
	}
}

func TestImportTopics_RejectsMalformedFile(t *testing.T) {
	path := writeTopicsFile(t, `["not", "a", "map"]`)
	repo := &fakeRepo{}
	imp := app.NewTopicImporter(repo, zerolog.Nop())

	if _, err := imp.ImportFile(context.Background(), path); err == nil {
		t.Fatal("expected a parse error")
	}
	if len(repo.storedTopics) != 0 {
		t.Fatal("nothing may be stored on a parse error")
	}
}

func TestImportTopics_MissingFile(t *testing.T) {
	repo := &fakeRepo{}
	imp := app.NewTopicImporter(repo, zerolog.Nop())

	if _, err := imp.ImportFile(context.Background(), filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected a read error")
	}
}
