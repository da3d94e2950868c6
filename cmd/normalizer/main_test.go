package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"normalizer/internal/relation"
	"normalizer/internal/transform"
)

func TestMain(m *testing.M) {
	log = setupLogging("error")
	os.Exit(m.Run())
}

func TestDemoOrdersDeterministic(t *testing.T) {
	a := demoOrders(50, 7)
	b := demoOrders(50, 7)
	if a.NumRows() != 50 {
		t.Fatalf("NumRows() = %d, want 50", a.NumRows())
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different datasets")
	}
}

func TestDemoOrdersDependenciesHold(t *testing.T) {
	ds := demoOrders(200, 1)

	id := ds.ColumnIndex("customer_id")
	name := ds.ColumnIndex("customer_name")
	seen := make(map[any]any)
	for _, row := range ds.Rows {
		if prev, ok := seen[row[id]]; ok && prev != row[name] {
			t.Fatalf("customer_id %v maps to both %v and %v", row[id], prev, row[name])
		}
		seen[row[id]] = row[name]
	}
	if len(seen) < 2 {
		t.Errorf("want at least 2 distinct customers, got %d", len(seen))
	}
}

func TestLoadDatasetDispatch(t *testing.T) {
	dir := t.TempDir()

	write := func(name, body string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	csvPath := write("a.csv", "id,city\n1,Berlin\n")
	jsonPath := write("a.json", `[{"id": 1, "city": "Berlin"}]`)
	htmlPath := write("a.html", `<table><tr><th>id</th><th>city</th></tr><tr><td>1</td><td>Berlin</td></tr></table>`)

	for _, path := range []string{csvPath, jsonPath, htmlPath} {
		ds, err := loadDataset(path, inputFlags{})
		if err != nil {
			t.Fatalf("loadDataset(%s): %v", path, err)
		}
		if got := ds.ColumnNames(); !reflect.DeepEqual(got, []string{"id", "city"}) {
			t.Errorf("loadDataset(%s) columns = %v", path, got)
		}
	}

	if _, err := loadDataset(csvPath, inputFlags{format: "xml"}); err == nil {
		t.Error("unknown format: want error")
	}
}

func TestBuildPlanUnknownTarget(t *testing.T) {
	ds := demoOrders(10, 1)
	if _, err := buildPlan(ds, nil, "5NF"); err == nil {
		t.Error("buildPlan(5NF): want error")
	}
}

func TestWritePlanDir(t *testing.T) {
	ds := demoOrders(60, 3)
	fds := []relation.FD{
		{
			Determinant: relation.NewAttrSet("customer_id"),
			Dependent:   relation.NewAttrSet("customer_city", "customer_name", "customer_zip"),
			Confidence:  1,
			Status:      relation.StatusConfirmed,
		},
		{
			Determinant: relation.NewAttrSet("product_code"),
			Dependent:   relation.NewAttrSet("product_name", "unit_price"),
			Confidence:  1,
			Status:      relation.StatusConfirmed,
		},
		{
			Determinant: relation.NewAttrSet("order_id"),
			Dependent:   relation.NewAttrSet("customer_id", "product_code", "quantity"),
			Confidence:  1,
			Status:      relation.StatusConfirmed,
		},
	}

	plan, err := buildPlan(ds, fds, "3NF")
	if err != nil {
		t.Fatalf("buildPlan: %v", err)
	}
	result, err := transform.Apply(plan, ds, false)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	dir := t.TempDir()
	if err := writePlanDir(dir, plan, ds, result, "orders.csv"); err != nil {
		t.Fatalf("writePlanDir: %v", err)
	}

	for _, name := range []string{"plan.json", "schema.sql", "erd.md", "README.md"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	for _, rel := range plan.Relations {
		path := filepath.Join(dir, "tables", rel.Name+".csv")
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing table file %s: %v", path, err)
		}
	}
}
