//go:build ignore

// build.go - Global Insights Explorer build system
// Usage: go run build.go [-target=TARGET]
// Targets: all, web, processor, clean, test, release

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

const module = "globalinsights"

var (
	rootDir string
	distDir string

	// key = cmd directory, value = binary name
	executables = map[string]string{
		"web":       "global-insights",
		"processor": "global-insights-processor",
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("Failed to get current directory: %v", err))
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, "dist")
}

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	goos := flag.String("os", runtime.GOOS, "Target operating system for release builds")
	flag.Parse()

	printHeader()
	startTime := time.Now()

	switch *target {
	case "all":
		buildAll(*verbose)
	case "web", "processor":
		prepareDirectories()
		buildExecutable(*target, runtime.GOOS, *verbose)
	case "clean":
		clean()
	case "test":
		runTests(*verbose)
	case "release":
		buildRelease(*goos, *verbose)
	default:
		showHelp()
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "   Global Insights Explorer - Build System " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func printWarning(msg string) {
	fmt.Printf("%s[WARNING]%s %s\n", colorYellow, colorReset, msg)
}

func buildAll(verbose bool) {
	printInfo("Building all components...")

	if err := checkPrerequisites(); err != nil {
		printError(fmt.Sprintf("Prerequisites check failed: %v", err))
		os.Exit(1)
	}
	prepareDirectories()

	for name := range executables {
		buildExecutable(name, runtime.GOOS, verbose)
	}
	copyConfigFiles()

	printSuccess("All components built successfully!")
}

func buildExecutable(name, goos string, verbose bool) {
	exeName, ok := executables[name]
	if !ok {
		printError(fmt.Sprintf("Unknown executable: %s", name))
		os.Exit(1)
	}
	if goos == "windows" {
		exeName += ".exe"
	}

	printInfo(fmt.Sprintf("Building %s (%s)...", name, goos))
	outputPath := filepath.Join(distDir, exeName)

	ldflags := fmt.Sprintf("-s -w -X %s/pkg/contracts.BuildTime=%s -X %s/pkg/contracts.GitCommit=%s",
		module, time.Now().UTC().Format(time.RFC3339), module, gitCommit())

	args := []string{"build"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "-ldflags", ldflags, "-o", outputPath, "./cmd/"+name)

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Env = append(os.Environ(), "GOOS="+goos)
	if verbose {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		sizeMB := float64(info.Size()) / 1024 / 1024
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", exeName, sizeMB))
	}
}

func buildRelease(goos string, verbose bool) {
	printInfo(fmt.Sprintf("Building release for %s...", goos))

	runTests(verbose)
	clean()
	prepareDirectories()
	for name := range executables {
		buildExecutable(name, goos, verbose)
	}
	copyConfigFiles()

	printSuccess("Release build ready in " + distDir)
}

func runTests(verbose bool) {
	printInfo("Running tests...")

	args := []string{"test", "-race", "./..."}
	if verbose {
		args = []string{"test", "-race", "-v", "./..."}
	}
	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Tests failed: %v", err))
		os.Exit(1)
	}
	printSuccess("All tests passed")
}

func clean() {
	printInfo("Cleaning build artifacts...")
	if err := os.RemoveAll(distDir); err != nil {
		printError(fmt.Sprintf("Failed to clean dist directory: %v", err))
	}
	printSuccess("Build artifacts cleaned")
}

func prepareDirectories() {
	for _, dir := range []string{distDir, filepath.Join(distDir, "logs"), filepath.Join(distDir, "Dataset")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			printError(fmt.Sprintf("Failed to create %s: %v", dir, err))
			os.Exit(1)
		}
	}
}

// copyConfigFiles ships config.yaml next to the binaries when present
func copyConfigFiles() {
	for _, name := range []string{"config.yaml"} {
		src := filepath.Join(rootDir, name)
		data, err := os.ReadFile(src)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			printWarning(fmt.Sprintf("Could not read %s: %v", name, err))
			continue
		}
		if err := os.WriteFile(filepath.Join(distDir, name), data, 0644); err != nil {
			printWarning(fmt.Sprintf("Could not copy %s: %v", name, err))
		}
	}
}

func checkPrerequisites() error {
	if _, err := exec.LookPath("go"); err != nil {
		return fmt.Errorf("go toolchain not found in PATH")
	}
	return nil
}

func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v] [-os=GOOS]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all        Build the web server and the processor (default)")
	fmt.Println("  web        Build the web server only")
	fmt.Println("  processor  Build the offline processor only")
	fmt.Println("  test       Run all tests with the race detector")
	fmt.Println("  clean      Remove build artifacts")
	fmt.Println("  release    Test, clean and build for the -os target")
}
