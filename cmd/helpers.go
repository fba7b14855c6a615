package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/dataloom-cli/internal/ai"
	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
	"github.com/KaramelBytes/dataloom-cli/internal/analyst"
	"github.com/KaramelBytes/dataloom-cli/internal/chart"
	cfgpkg "github.com/KaramelBytes/dataloom-cli/internal/config"
	"github.com/KaramelBytes/dataloom-cli/internal/insight"
	"github.com/KaramelBytes/dataloom-cli/internal/parser"
	"github.com/KaramelBytes/dataloom-cli/internal/project"
	"github.com/KaramelBytes/dataloom-cli/internal/utils"
)

// apiKeyEnv names the conventional key variable per provider.
var apiKeyEnv = map[string]string{
	ai.ProviderOpenAI:     "OPENAI_API_KEY",
	ai.ProviderOpenRouter: "OPENROUTER_API_KEY",
	ai.ProviderAnthropic:  "ANTHROPIC_API_KEY",
}

type runtimeOptions struct {
	ProviderFlag string
	OllamaHost   string
}

func normalizeProvider(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == ai.ProviderLocal {
		return ai.ProviderOllama
	}
	return name
}

func buildRuntime(cfg *cfgpkg.Global, opts runtimeOptions) (ai.Runtime, string, error) {
	rc := ai.RuntimeConfig{
		HTTPTimeout: 60 * time.Second,
		RetryMax:    3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    4 * time.Second,
	}
	if cfg != nil {
		if cfg.HTTPTimeoutSec > 0 {
			rc.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSec) * time.Second
		}
		if cfg.RetryMaxAttempts > 0 {
			rc.RetryMax = cfg.RetryMaxAttempts
		}
		if cfg.RetryBaseDelayMs > 0 {
			rc.BaseDelay = time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond
		}
		if cfg.RetryMaxDelayMs > 0 {
			rc.MaxDelay = time.Duration(cfg.RetryMaxDelayMs) * time.Millisecond
		}
		rc.BaseURL = cfg.BaseURL
	}

	providerName := normalizeProvider(opts.ProviderFlag)
	if providerName == "" && cfg != nil {
		providerName = normalizeProvider(cfg.Provider)
	}
	if providerName == "" {
		providerName = ai.ProviderOpenAI
	}

	if env, ok := apiKeyEnv[providerName]; ok {
		rc.APIKey = os.Getenv(env)
	}
	if rc.APIKey == "" && cfg != nil {
		rc.APIKey = cfg.APIKey
	}

	if providerName == ai.ProviderOllama {
		host := strings.TrimSpace(opts.OllamaHost)
		if host == "" && cfg != nil {
			host = cfg.OllamaHost
		}
		if host == "" {
			host = ai.OllamaHost
		}
		rc.Host = host
	}

	client, ok := ai.GetRuntime(providerName, rc)
	if !ok {
		return nil, providerName, fmt.Errorf("provider not supported: %s (use %s)", providerName, strings.Join(ai.Providers(), ", "))
	}
	return client, providerName, nil
}

func selectModel(cfg *cfgpkg.Global, provider, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if cfg != nil && cfg.Model != "" && normalizeProvider(cfg.Provider) == provider {
		return cfg.Model
	}
	if m := ai.DefaultModel(provider); m != "" {
		return m
	}
	if cfg != nil {
		return cfg.Model
	}
	return ""
}

// workspaceDir picks --workspace, then an enclosing workspace of the current
// directory, then the configured one.
func workspaceDir() string {
	if workspaceFlag != "" {
		return cfgpkg.ExpandHome(workspaceFlag)
	}
	if root, err := utils.FindWorkspaceRoot(""); err == nil {
		return root
	}
	if cfg != nil && cfg.WorkspaceDir != "" {
		return cfg.WorkspaceDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dataloom"
	}
	return filepath.Join(home, ".dataloom", "workspace")
}

func openWorkspace() (*project.Workspace, error) {
	dir := workspaceDir()
	ws, err := project.Load(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no workspace at %s (run `dataloom init` first)", dir)
		}
		return nil, err
	}
	return ws, nil
}

func loadOptions() analysis.Options {
	opt := analysis.DefaultOptions()
	if cfg != nil && cfg.MaxRows > 0 {
		opt.MaxRows = cfg.MaxRows
	}
	return opt
}

// fileRepository serves one file on disk under its own path.
type fileRepository struct {
	path string
	opt  analysis.Options
}

func (r fileRepository) Get(_ context.Context, _ string) (*analysis.Dataset, error) {
	return parser.LoadFile(r.path, r.opt)
}

// repositoryFor resolves ref as a readable data file or as a registered
// dataset id or name.
func repositoryFor(ref string, opt analysis.Options) (analyst.Repository, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		if !parser.Supported(ref) {
			return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(ref))
		}
		return fileRepository{path: ref, opt: opt}, nil
	}
	ws, err := openWorkspace()
	if err != nil {
		return nil, err
	}
	return project.NewRepository(ws, opt, appLogger()), nil
}

type serviceOptions struct {
	Explain  bool
	Stream   bool
	Provider string
	Model    string
}

// newService wires the analysis service. When so.Explain is set it also
// returns the model used for insights.
func newService(repo analyst.Repository, opt analysis.Options, so serviceOptions) (*analyst.Service, string, error) {
	var options []analyst.Option
	model := ""
	if so.Explain {
		rt, provider, err := buildRuntime(cfg, runtimeOptions{ProviderFlag: so.Provider})
		if err != nil {
			return nil, "", err
		}
		model = selectModel(cfg, provider, so.Model)
		gopts := insight.Options{Model: model}
		if so.Stream {
			gopts.OnDelta = func(d string) { fmt.Fprint(os.Stderr, d) }
		}
		if cfg != nil {
			gopts.MaxTokens = cfg.MaxTokens
			gopts.Temperature = cfg.Temperature
			if cfg.HTTPTimeoutSec > 0 {
				gopts.Timeout = time.Duration(cfg.HTTPTimeoutSec) * time.Second
			}
		}
		options = append(options, analyst.WithInsights(insight.NewGenerator(rt, gopts, appLogger())))
	}
	ccfg := chart.DefaultConfig()
	ccfg.Logger = appLogger()
	return analyst.NewService(repo, analyst.Options{Profile: opt, Chart: ccfg}, appLogger(), options...), model, nil
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// writeHTML exports figures to path as an interactive page.
func writeHTML(path string, figs ...chart.Figure) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create html: %w", err)
	}
	if err := chart.WriteHTML(f, chart.DefaultConfig(), figs...); err != nil {
		_ = f.Close()
		return fmt.Errorf("write html: %w", err)
	}
	return f.Close()
}

func parseSeparator(flag, value string, allowed map[string]rune) (rune, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return 0, nil
	}
	if r, ok := allowed[v]; ok {
		return r, nil
	}
	return 0, fmt.Errorf("unsupported --%s: %s", flag, value)
}

var (
	delimiterNames = map[string]rune{",": ',', ";": ';', "tab": '\t', "|": '|'}
	decimalNames   = map[string]rune{".": '.', "dot": '.', ",": ',', "comma": ','}
	thousandsNames = map[string]rune{",": ',', ".": '.', "space": ' '}
)
