package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const salesCSV = `region,sales,units
Seoul,120,3
Busan,80,2
Daegu,95,4
Seoul,130,5
Busan,70,1
Incheon,60,2
`

// resetFlags clears bound variables and Changed state that persist across
// invocations of rootCmd.
func resetFlags() {
	askChart, askX, askY, askHTML, askProvider, askModel = "", "", "", "", "", ""
	askExplain, askStream, askJSON = false, false, false
	listJSON, recJSON, initForce = false, false, false
	addDesc, addSheetName, addSheetIndex = "", "", 0
	profOutputPath, profSheetName, profSheetIndex = "", "", 0
	for _, name := range []string{"chart", "x", "y", "html", "json", "explain", "stream", "provider", "model"} {
		if fl := askCmd.Flags().Lookup(name); fl != nil {
			fl.Changed = false
		}
	}
	workspaceFlag = ""
	if fl := rootCmd.PersistentFlags().Lookup("workspace"); fl != nil {
		fl.Changed = false
	}
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) {
	t.Helper()
	if err := tryCmd(args...); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

func tryCmd(args ...string) error {
	resetFlags()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// setupWorkspace isolates HOME and returns a workspace dir and a data file.
func setupWorkspace(t *testing.T) (ws, data string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("OPENAI_API_KEY", "")

	data = filepath.Join(home, "sales.csv")
	if err := os.WriteFile(data, []byte(salesCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return filepath.Join(home, "ws"), data
}

func TestCLI_Init_Add_List_Profile(t *testing.T) {
	ws, data := setupWorkspace(t)

	runCmd(t, "init", "itest", "-w", ws)
	if _, err := os.Stat(filepath.Join(ws, "workspace.json")); err != nil {
		t.Fatalf("workspace.json not written: %v", err)
	}
	runCmd(t, "add", data, "-w", ws, "--desc", "regional sales")
	runCmd(t, "list", "-w", ws, "--json")

	// A second add of the same name is rejected.
	if err := tryCmd("add", data, "-w", ws); err == nil {
		t.Fatal("expected duplicate dataset error")
	}

	out := filepath.Join(t.TempDir(), "profile.md")
	runCmd(t, "profile", data, "-o", out)
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read profile: %v", err)
	}
	if !strings.Contains(string(b), "sales") {
		t.Fatalf("profile missing column: %s", b)
	}

	runCmd(t, "remove", "SALES.CSV", "-w", ws)
	if err := tryCmd("remove", "sales.csv", "-w", ws); err == nil {
		t.Fatal("expected not-found after remove")
	}
}

func TestCLI_AskWritesChart(t *testing.T) {
	ws, data := setupWorkspace(t)
	runCmd(t, "init", "-w", ws)
	runCmd(t, "add", data, "-w", ws)

	html := filepath.Join(t.TempDir(), "chart.html")
	runCmd(t, "ask", "sales.csv", "지역별 매출 비교", "-w", ws, "--chart", "bar", "--x", "region", "--y", "sales", "--html", html)
	b, err := os.ReadFile(html)
	if err != nil {
		t.Fatalf("chart not written: %v", err)
	}
	if !strings.Contains(string(b), "<html") {
		t.Fatalf("expected an html page, got %d bytes", len(b))
	}

	// Direct file paths bypass the workspace.
	runCmd(t, "ask", data, "what chart should I use for this data", "--json")
	runCmd(t, "recommend", data)
}

func TestCLI_AskUnknownColumn(t *testing.T) {
	_, data := setupWorkspace(t)
	err := tryCmd("ask", data, "show it", "--x", "regn")
	if err == nil {
		t.Fatal("expected unknown column error")
	}
	if !strings.Contains(err.Error(), `"region"`) {
		t.Fatalf("expected a suggestion, got %v", err)
	}
}

func TestCLI_NoWorkspace(t *testing.T) {
	ws, _ := setupWorkspace(t)
	err := tryCmd("list", "-w", ws)
	if err == nil || !strings.Contains(err.Error(), "dataloom init") {
		t.Fatalf("expected init hint, got %v", err)
	}
}
