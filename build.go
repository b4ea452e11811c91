//go:build ignore

// build.go - enrollrank build script
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, web, rank, test, clean

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const module = "enrollrank"

var (
	distDir = "dist"

	// key = directory under cmd/, value = output name without extension
	executables = map[string]string{
		"web":  "enrollrank-web",
		"rank": "enrollrank",
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
)

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	start := time.Now()

	var err error
	switch *target {
	case "all":
		for name := range executables {
			if err = buildExecutable(name, *verbose); err != nil {
				break
			}
		}
	case "web", "rank":
		err = buildExecutable(*target, *verbose)
	case "test":
		err = runTests(*verbose)
	case "clean":
		err = os.RemoveAll(distDir)
	default:
		showHelp()
		os.Exit(1)
	}

	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}
	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(start).Round(time.Millisecond)))
}

func buildExecutable(name string, verbose bool) error {
	out := filepath.Join(distDir, executables[name])
	if runtime.GOOS == "windows" {
		out += ".exe"
	}
	printInfo(fmt.Sprintf("Building %s -> %s", name, out))

	if err := os.MkdirAll(distDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", distDir, err)
	}

	args := []string{"build", "-trimpath", "-ldflags", ldflags(), "-o", out}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./cmd/"+name)
	return run(verbose, "go", args...)
}

// ldflags stamps the build time and commit into pkg/contracts.
func ldflags() string {
	pkg := module + "/pkg/contracts"
	flags := []string{
		"-s", "-w",
		fmt.Sprintf("-X %s.BuildTime=%s", pkg, time.Now().UTC().Format(time.RFC3339)),
	}
	if commit, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output(); err == nil {
		flags = append(flags, fmt.Sprintf("-X %s.GitCommit=%s", pkg, strings.TrimSpace(string(commit))))
	} else {
		printWarning("git commit unavailable, leaving GitCommit empty")
	}
	return strings.Join(flags, " ")
}

func runTests(verbose bool) error {
	printInfo("Running tests...")
	args := []string{"test", "-race", "./..."}
	if verbose {
		args = append(args, "-v")
	}
	return run(verbose, "go", args...)
}

func run(verbose bool, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if verbose {
		fmt.Printf("  $ %s %s\n", name, strings.Join(args, " "))
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", name, args[0], err)
	}
	return nil
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all    Build every executable (default)")
	fmt.Println("  web    Build the dashboard server")
	fmt.Println("  rank   Build the command line ranker")
	fmt.Println("  test   Run all tests with the race detector")
	fmt.Println("  clean  Remove build output")
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printWarning(msg string) {
	fmt.Printf("%s[WARNING]%s %s\n", colorYellow, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}
