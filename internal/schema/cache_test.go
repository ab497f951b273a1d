package schema

import "testing"

func sampleRows() [][4]string {
	return [][4]string{
		{"public", "accounts", "id", "integer"},
		{"public", "accounts", "email", "text"},
		{"public", "orders", "id", "integer"},
		{"public", "orders", "account_id", "integer"},
		{"reporting", "orders", "id", "integer"},
	}
}

func TestBuildGroupsConsecutiveRows(t *testing.T) {
	c := Build(sampleRows())
	if !c.Loaded {
		t.Fatal("expected Loaded to be true after Build")
	}
	if len(c.Tables) != 3 {
		t.Fatalf("expected 3 tables, got %d", len(c.Tables))
	}
	if c.Tables[0].Name != "accounts" || len(c.Tables[0].Columns) != 2 {
		t.Fatalf("unexpected first table: %+v", c.Tables[0])
	}
	if c.Tables[1].Schema != "public" || c.Tables[1].Name != "orders" || len(c.Tables[1].Columns) != 2 {
		t.Fatalf("unexpected second table: %+v", c.Tables[1])
	}
	if c.Tables[2].Schema != "reporting" || c.Tables[2].Name != "orders" {
		t.Fatalf("expected schema-qualified orders to stay distinct, got %+v", c.Tables[2])
	}
}

func TestFindQualifiedAndUnqualified(t *testing.T) {
	c := Build(sampleRows())

	if _, ok := c.Find("", "orders"); !ok {
		t.Fatal("expected unqualified lookup to find first matching table")
	}
	tbl, ok := c.Find("reporting", "orders")
	if !ok || tbl.Schema != "reporting" {
		t.Fatalf("expected schema-qualified lookup to find reporting.orders, got %+v, %v", tbl, ok)
	}
	if _, ok := c.Find("", "missing"); ok {
		t.Fatal("expected lookup of missing table to fail")
	}
}

func TestColumnNamesPreservesOrder(t *testing.T) {
	c := Build(sampleRows())
	tbl, _ := c.Find("public", "orders")
	names := tbl.ColumnNames()
	if len(names) != 2 || names[0] != "id" || names[1] != "account_id" {
		t.Fatalf("unexpected column order: %v", names)
	}
}

func TestEmptyCacheIsNotLoaded(t *testing.T) {
	var c Cache
	if c.Loaded {
		t.Fatal("zero-value cache must not report Loaded")
	}
}
