package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/initializ/wrfup/acquire"
	"github.com/initializ/wrfup/compile"
	"github.com/initializ/wrfup/config"
	"github.com/initializ/wrfup/configure"
	"github.com/initializ/wrfup/envfile"
	"github.com/initializ/wrfup/internal/runlog"
	"github.com/initializ/wrfup/internal/shell"
	"github.com/initializ/wrfup/internal/ui"
	"github.com/initializ/wrfup/pipeline"
	"github.com/initializ/wrfup/probe"
	"github.com/initializ/wrfup/sysdeps"
)

const (
	defaultWRFVersion = "4.5.2"
	defaultWPSVersion = "4.5"
)

func runInstall(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	styles := ui.NewStyleSet()
	fmt.Print(ui.RenderBanner(styles, appVersion, ui.Width()))

	preset, err := config.Load(presetPath)
	if err != nil {
		return err
	}
	vr := config.Validate(preset)
	for _, w := range vr.Warnings {
		fmt.Printf("  %s %s\n", styles.MarkWarn(), w)
	}
	if !vr.IsValid() {
		for _, e := range vr.Errors {
			fmt.Printf("  %s %s\n", styles.MarkFail(), e)
		}
		return fmt.Errorf("preset %s is invalid", presetPath)
	}

	prompt := ui.NewPrompt(styles)

	if !preset.NonInteractive {
		proceed, err := prompt.Confirm("This downloads and compiles WRF, which can take over an hour. Continue?", true)
		if err != nil {
			return err
		}
		if !proceed {
			fmt.Println(styles.DimTxt.Render("Nothing installed."))
			return nil
		}
	}

	profile := probe.Probe(ctx)
	printProfile(styles, profile)

	root, err := chooseInstallRoot(prompt, preset)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return fmt.Errorf("creating install root %s: %w", root, err)
	}

	cores, err := chooseCores(prompt, preset)
	if err != nil {
		return err
	}

	log, err := runlog.New(root, os.Stdout)
	if err != nil {
		return err
	}
	defer log.Close()
	log.Infof("wrfup %s starting; install root %s, %d build jobs", appVersion, root, cores)

	ic := pipeline.NewInstallContext(root, cores)
	if err := chooseVariant(prompt, styles, preset, profile, ic); err != nil {
		return err
	}
	if err := chooseNesting(prompt, preset, ic); err != nil {
		return err
	}
	if preset.Companion != nil {
		ic.WantsPreprocessing = *preset.Companion
		ic.CompanionDecided = true
	}

	wrfVersion := preset.WRFVersion
	if wrfVersion == "" {
		wrfVersion = defaultWRFVersion
	}
	wpsVersion := preset.WPSVersion
	if wpsVersion == "" {
		wpsVersion = defaultWPSVersion
	}

	runner := &shell.Exec{Log: log.Raw()}
	controller := &pipeline.Controller{
		Stages: pipeline.Stages{
			InstallDeps:        &sysdeps.Installer{Runner: runner, Log: log, Profile: profile},
			SetEnv:             &envfile.Materializer{Runner: runner, Log: log},
			Acquire:            &acquire.Acquirer{Runner: runner, Log: log, Target: acquire.MainTarget(wrfVersion)},
			Configure:          configure.MainConfigurator(runner, log),
			Compile:            compile.MainDriver(runner, log),
			AcquireCompanion:   &acquire.Acquirer{Runner: runner, Log: log, Target: acquire.CompanionTarget(wpsVersion)},
			ConfigureCompanion: configure.CompanionConfigurator(runner, log),
			CompileCompanion:   compile.CompanionDriver(runner, log),
			Verify:             &compile.Verifier{Log: log},
		},
		Prompt: prompt,
		Log:    log,
	}

	if err := controller.Run(ctx, ic); err != nil {
		fmt.Printf("\n%s %s\n", styles.MarkFail(), err)
		fmt.Println(styles.DimTxt.Render("Full logs: " + log.InfoPath() + ", " + log.ErrorPath()))
		return err
	}

	printSummary(styles, ic, log)
	return nil
}

// asker is the prompt surface the choose helpers need; ui.Prompt
// implements it, tests script it.
type asker interface {
	Text(label, defaultVal string) (string, error)
	Select(label string, items []string, defaultIdx int) (int, error)
	Confirm(label string, defaultYes bool) (bool, error)
}

func chooseInstallRoot(prompt asker, preset *config.Preset) (string, error) {
	root := preset.InstallRoot
	if root == "" {
		def := "~/wrf"
		if home, err := os.UserHomeDir(); err == nil {
			def = filepath.Join(home, "wrf")
		}
		answer, err := prompt.Text("Install directory", def)
		if err != nil {
			return "", err
		}
		root = answer
	}
	if strings.HasPrefix(root, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding %s: %w", root, err)
		}
		root = filepath.Join(home, root[2:])
	}
	return filepath.Abs(root)
}

func chooseCores(prompt asker, preset *config.Preset) (int, error) {
	if preset.Jobs > 0 {
		return preset.Jobs, nil
	}
	def := runtime.NumCPU()
	if preset.NonInteractive {
		return def, nil
	}
	answer, err := prompt.Text("Parallel build jobs", strconv.Itoa(def))
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil || n < 1 {
		return def, nil
	}
	return n, nil
}

func chooseVariant(prompt asker, styles *ui.StyleSet, preset *config.Preset, profile *probe.Profile, ic *pipeline.InstallContext) error {
	toolchain, variants, fellBack := configure.VariantsFor(profile.Compilers)
	if fellBack {
		fmt.Printf("  %s no Fortran compiler detected; assuming the GNU toolchain\n", styles.MarkWarn())
	}
	ic.Toolchain = toolchain

	if preset.Variant != "" {
		for _, v := range variants {
			if v.Class == preset.Variant {
				ic.VariantOption = v.Option
				ic.VariantClass = v.Class
				return nil
			}
		}
		return fmt.Errorf("preset variant %q is not offered by the %s toolchain", preset.Variant, toolchain)
	}
	if preset.NonInteractive {
		ic.VariantOption = variants[0].Option
		ic.VariantClass = variants[0].Class
		return nil
	}

	items := make([]string, len(variants))
	for i, v := range variants {
		items[i] = v.Label
	}
	idx, err := prompt.Select("Parallelism variant ("+toolchain+" toolchain)", items, 0)
	if err != nil {
		return err
	}
	ic.VariantOption = variants[idx].Option
	ic.VariantClass = variants[idx].Class
	return nil
}

func chooseNesting(prompt asker, preset *config.Preset, ic *pipeline.InstallContext) error {
	if preset.Nesting > 0 {
		ic.NestingOption = preset.Nesting
		return nil
	}
	if preset.NonInteractive {
		ic.NestingOption = 1
		return nil
	}
	idx, err := prompt.Select("Nesting", configure.NestingChoices, 0)
	if err != nil {
		return err
	}
	ic.NestingOption = idx + 1
	return nil
}

func printProfile(styles *ui.StyleSet, p *probe.Profile) {
	fmt.Println(styles.Section.Render("  System"))
	row := func(k, v string) {
		if v == "" {
			v = styles.DimTxt.Render("none detected")
		}
		fmt.Printf("  %s%s\n", styles.SummaryKey.Render(k), v)
	}
	row("OS", string(p.OS)+" ("+p.Distro+")")
	row("Architecture", p.Arch)
	row("Compilers", strings.Join(p.Compilers, ", "))
	row("MPI", strings.Join(p.MPI, ", "))
	row("Libraries", strings.Join(p.Libraries, ", "))
	if p.MemoryKB > 0 {
		row("Memory", fmt.Sprintf("%d MB", p.MemoryKB/1024))
	}
	if p.DiskFreeKB > 0 {
		row("Free disk", fmt.Sprintf("%d MB", p.DiskFreeKB/1024))
	}
	fmt.Println()
}

func printSummary(styles *ui.StyleSet, ic *pipeline.InstallContext, log *runlog.Logger) {
	fmt.Printf("\n%s Installation complete.\n\n", styles.MarkOK())
	row := func(k, v string) {
		fmt.Printf("  %s%s\n", styles.SummaryKey.Render(k), styles.SummaryVal.Render(v))
	}
	row("Install root", ic.InstallRoot)
	row("WRF executables", filepath.Join(ic.InstallRoot, "WRF", "main"))
	if ic.CompanionBuilt {
		row("WPS executables", filepath.Join(ic.InstallRoot, "WPS"))
	}
	row("Environment", ic.EnvFile)
	row("Logs", log.InfoPath())
	fmt.Println()
	fmt.Println(styles.DimTxt.Render("  Source " + ic.EnvFile + " in new shells before running WRF."))
}
