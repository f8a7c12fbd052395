package dryrun

import (
	"bytes"
	"context"
	"testing"
)

func TestIsEnabled(t *testing.T) {
	if IsEnabled(context.Background()) {
		t.Error("IsEnabled should return false by default")
	}
	if !IsEnabled(WithDryRun(context.Background(), true)) {
		t.Error("IsEnabled should return true when dry-run is enabled")
	}
	if IsEnabled(WithDryRun(context.Background(), false)) {
		t.Error("IsEnabled should return false when dry-run is explicitly disabled")
	}
}

func TestPreview_Write(t *testing.T) {
	p := &Preview{
		Operation: "delete",
		Resource:  "2 record(s)",
		Method:    "DELETE",
		Path:      "/data?records=r1&records=r2",
		Details: map[string]any{
			"records": []string{"r1", "r2"},
			"count":   2,
		},
		Warnings: []string{"Deleted records cannot be restored"},
	}

	var buf bytes.Buffer
	p.Write(&buf)

	want := "[DRY-RUN] Would delete 2 record(s)\n" +
		"  DELETE /data?records=r1&records=r2\n" +
		"  count: 2\n" +
		"  records: [r1 r2]\n" +
		"  ! Deleted records cannot be restored\n" +
		"No changes made (dry-run mode)\n"
	if buf.String() != want {
		t.Errorf("Write() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestPreview_WriteMinimal(t *testing.T) {
	p := &Preview{Operation: "log", Resource: "app_opened"}

	var buf bytes.Buffer
	p.Write(&buf)

	want := "[DRY-RUN] Would log app_opened\nNo changes made (dry-run mode)\n"
	if buf.String() != want {
		t.Errorf("Write() = %q, want %q", buf.String(), want)
	}
}
