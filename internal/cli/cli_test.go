package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amankumarsingh77/slideshow-encoder/internal/models"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	root := NewRootCommand()
	for _, name := range []string{"serve", "render"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("Find(%q) = %v, %v", name, cmd, err)
		}
	}
	if f := root.PersistentFlags().Lookup("config"); f == nil || f.DefValue != "config.yml" {
		t.Fatalf("config flag = %+v", f)
	}
}

func TestRenderRequiresSpec(t *testing.T) {
	root := NewRootCommand()
	root.SetArgs([]string{"render"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "spec") {
		t.Fatalf("err = %v, want missing --spec", err)
	}
}

func TestReadSpec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.json")
	body := `{"slideshow":[{"src":"a.png","duration":2,"transition":"fade"}],"soundtrack":"s.mp3","orderId":"o1","userID":"u1"}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	in, err := readSpec(path, nil)
	if err != nil {
		t.Fatalf("readSpec() error = %v", err)
	}
	if len(in.Slideshow) != 1 || in.Slideshow[0].Src != "a.png" || in.OrderID != "o1" || in.UserID != "u1" || in.Soundtrack != "s.mp3" {
		t.Fatalf("input = %+v", in)
	}

	in, err = readSpec("-", strings.NewReader(body))
	if err != nil || in.OrderID != "o1" {
		t.Fatalf("readSpec(stdin) = %+v, %v", in, err)
	}

	if _, err := readSpec("-", strings.NewReader(`{"slides":[]}`)); err == nil {
		t.Fatal("expected error for unknown field")
	}
	if _, err := readSpec(filepath.Join(t.TempDir(), "missing.json"), nil); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	err := printStatus(&buf, "job-1", models.StatusResponse{Status: models.JobStatusReady, URL: "https://cdn/x.mp4"})
	if err != nil {
		t.Fatalf("printStatus() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"id": "job-1"`, `"status": "READY"`, `"url": "https://cdn/x.mp4"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %s", out, want)
		}
	}
}

func TestRenderAllowLocalFlagDefaultsOff(t *testing.T) {
	root := NewRootCommand()
	cmd, _, err := root.Find([]string{"render"})
	if err != nil {
		t.Fatal(err)
	}
	if f := cmd.Flags().Lookup("allow-local"); f == nil || f.DefValue != "false" {
		t.Fatalf("allow-local flag = %+v", f)
	}
	serve, _, _ := root.Find([]string{"serve"})
	if serve.Flags().Lookup("allow-local") != nil {
		t.Fatal("serve must not expose allow-local")
	}
}
