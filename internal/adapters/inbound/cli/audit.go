package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bst-license-checker/bst-license-checker/internal/adapters/outbound/bst"
	"github.com/bst-license-checker/bst-license-checker/internal/adapters/outbound/cache"
	"github.com/bst-license-checker/bst-license-checker/internal/adapters/outbound/config"
	"github.com/bst-license-checker/bst-license-checker/internal/adapters/outbound/gitinfo"
	"github.com/bst-license-checker/bst-license-checker/internal/adapters/outbound/history"
	"github.com/bst-license-checker/bst-license-checker/internal/adapters/outbound/ignorelist"
	"github.com/bst-license-checker/bst-license-checker/internal/adapters/outbound/report"
	"github.com/bst-license-checker/bst-license-checker/internal/adapters/outbound/scanner"
	"github.com/bst-license-checker/bst-license-checker/internal/adapters/outbound/tui"
	"github.com/bst-license-checker/bst-license-checker/internal/application"
	"github.com/bst-license-checker/bst-license-checker/internal/domain"
)

type auditFlags struct {
	deps       string
	track      bool
	ignorelist string
	work       string
	output     string
	workers    int
	deny       []string
	strict     bool
	spdx       bool
}

func newAuditCmd(g *globalFlags) *cobra.Command {
	f := &auditFlags{}

	cmd := &cobra.Command{
		Use:   "bst-license-checker ELEMENT_NAMES...",
		Short: "Check the licenses of BuildStream elements and their dependencies",
		Long: `Run licensecheck over the sources of the given BuildStream elements and their
dependencies, and write a license summary to the output directory.

Results are cached in the work directory by element full key, so repeated runs
only check out and scan elements whose sources or configuration changed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, g, f, args)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.deps, "deps", "d", string(domain.DepsRun), "Dependencies to check: none, run or all")
	fl.BoolVarP(&f.track, "track", "t", false, "Track sources before fetching them")
	fl.StringVarP(&f.ignorelist, "ignorelist", "i", "", "File listing elements to skip, one per line")
	fl.StringVarP(&f.work, "work", "w", "", "Work directory holding the scan cache (reused across runs)")
	fl.StringVarP(&f.output, "output", "o", "", "Output directory for the report (must be empty)")
	fl.IntVar(&f.workers, "workers", 0, "Elements checked out and scanned in parallel (default from config)")
	fl.StringArrayVar(&f.deny, "deny", nil, "License glob to flag as a violation (repeatable)")
	fl.BoolVar(&f.strict, "strict", false, "Exit with status 5 when any element failed or a denied license was found")
	fl.BoolVar(&f.spdx, "spdx", false, "Also write an SPDX 2.3 JSON document")
	return cmd
}

// runAudit checks every input before the first bst call, then runs the
// pipeline and prints the summary.
func runAudit(cmd *cobra.Command, g *globalFlags, f *auditFlags, args []string) error {
	ctx := cmd.Context()
	log := g.logger(cmd)

	kind, err := domain.ParseDependencyKind(f.deps)
	if err != nil {
		return domain.ConfigError("--deps", err)
	}
	ws, err := application.PrepareWorkspace(f.work, f.output)
	if err != nil {
		return err
	}
	cfg, err := config.New().Load(g.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("workers") {
		if f.workers < 1 || f.workers > 64 {
			return domain.ConfigErrorf("--workers must be between 1 and 64, got %d", f.workers)
		}
		cfg.Workers = f.workers
	}
	cfg.DenyLicenses = append(cfg.DenyLicenses, f.deny...)

	ignore := domain.IgnoreSet{}
	if f.ignorelist != "" {
		if ignore, err = ignorelist.Load(f.ignorelist); err != nil {
			return err
		}
	}
	policy, err := domain.NewLicensePolicy(cfg.DenyLicenses)
	if err != nil {
		return domain.ConfigError("deny_licenses", err)
	}

	sc := scanner.New(cfg.Scanner, cfg.InvalidLicenseSet(), log)
	if err := sc.Check(); err != nil {
		return err
	}
	projectDir, err := os.Getwd()
	if err != nil {
		return domain.ConfigError("project directory", err)
	}
	client, err := bst.New(ctx, cfg.BST, projectDir, log)
	if err != nil {
		return err
	}
	project, err := config.ProjectName(projectDir)
	if err != nil {
		log.Debug().Err(err).Msg("no project name")
	}

	svc := application.NewAuditService(
		application.NewElementCatalog(client, ignore, log),
		application.NewSourceStager(client, ws.WorkDir, log),
		sc,
		cache.New(ws.WorkDir, log),
		report.New(report.Options{SPDX: f.spdx}, log),
		policy,
		history.New(),
		gitinfo.New(),
		log,
	)

	roots := make([]domain.ElementRef, len(args))
	for i, a := range args {
		roots[i] = domain.ElementRef(a)
	}
	res, err := svc.Run(ctx, application.AuditRequest{
		Roots:      roots,
		Kind:       kind,
		Track:      f.track,
		WorkDir:    ws.WorkDir,
		OutputDir:  ws.OutputDir,
		ProjectDir: projectDir,
		Project:    project,
		Workers:    cfg.Workers,
		Strict:     f.strict,
	})
	if res != nil {
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderReport(res.Report, res.Stats, ws.OutputDir))
	}
	return err
}
