// Command lanelint validates lane map documents. In single-pass mode it runs
// every registered check (optionally filtered by name) and prints the issues.
// Given a requirements file it instead schedules the declared validators by
// their prerequisites, aggregates pass/fail per requirement and optionally
// writes the annotated results document.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/banshee-data/lanelint/internal/config"
	"github.com/banshee-data/lanelint/internal/fsutil"
	"github.com/banshee-data/lanelint/internal/lanemap"
	"github.com/banshee-data/lanelint/internal/monitoring"
	"github.com/banshee-data/lanelint/internal/requirements"
	"github.com/banshee-data/lanelint/internal/resultsdb"
	"github.com/banshee-data/lanelint/internal/security"
	"github.com/banshee-data/lanelint/internal/validation"
	"github.com/banshee-data/lanelint/internal/version"

	// Validator packages register their checks on import.
	_ "github.com/banshee-data/lanelint/internal/validators/intersection"
	_ "github.com/banshee-data/lanelint/internal/validators/trafficlight"
)

var (
	mapFile      = flag.String("map", "", "Path to the map document to validate (required)")
	reqFile      = flag.String("requirements", "", "Path to a requirements JSON file (enables scheduled mode)")
	outputDir    = flag.String("output-dir", "", "Directory to write the annotated validation results into")
	checksFilter = flag.String("validator", "", "Comma-separated check name patterns to run (default: all)")
	printChecks  = flag.Bool("print", false, "Print the available checks matching -validator and exit")
	paramsFile   = flag.String("params", "", "Optional tuning parameters JSON file")
	archivePath  = flag.String("db", "", "Optional sqlite archive to record this run into")
	showVersion  = flag.Bool("version", false, "Print version information and exit")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	if *showVersion {
		fmt.Printf("lanelint %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return 0
	}

	if *printChecks {
		checks := validation.AvailableChecks(*checksFilter)
		if len(checks) == 0 {
			fmt.Printf("No checks found matching to '%s'\n", *checksFilter)
			return 0
		}
		fmt.Println("The following checks are available:")
		for _, name := range checks {
			fmt.Println(name)
		}
		return 0
	}

	var params *config.Params
	if *paramsFile != "" {
		var err error
		params, err = config.Load(*paramsFile)
		if err != nil {
			log.Fatalf("failed to load params: %v", err)
		}
		validation.Configure(params)
	}

	if *mapFile == "" {
		log.Fatal("no map file specified")
	}
	m, err := lanemap.Load(*mapFile)
	if err != nil {
		log.Fatalf("failed to load map: %v", err)
	}

	if *reqFile == "" {
		return runSinglePass(m)
	}
	return runScheduled(m, params)
}

// runSinglePass runs all matching checks once and prints every issue.
func runSinglePass(m *lanemap.Map) int {
	total := 0
	for _, report := range validation.RunAll(m, *checksFilter) {
		if len(report.Issues) == 0 {
			continue
		}
		fmt.Printf("%s:\n", report.Name)
		for _, issue := range report.Issues {
			fmt.Printf("  %s\n", issue)
			total++
		}
	}
	if total == 0 {
		fmt.Println("No issues were found.")
		return 0
	}
	fmt.Printf("%d issues were found.\n", total)
	return 1
}

// runScheduled loads the requirements document, runs the dependency
// scheduler and reports the aggregate outcome.
func runScheduled(m *lanemap.Map, params *config.Params) int {
	doc, err := requirements.Load(*reqFile)
	if err != nil {
		log.Fatalf("failed to load requirements: %v", err)
	}

	result := requirements.NewScheduler().Run(doc, m)
	fmt.Print(result.Summary())

	if *outputDir != "" {
		fileName := params.GetResultsFileName()
		if err := os.MkdirAll(*outputDir, 0o755); err != nil {
			log.Fatalf("failed to create output directory: %v", err)
		}
		// A results file name from the params file must not climb out of
		// the output directory.
		if err := security.ValidatePathWithinDirectory(filepath.Join(*outputDir, fileName), *outputDir); err != nil {
			log.Fatalf("invalid results file name: %v", err)
		}
		if err := result.Write(fsutil.OSFileSystem{}, *outputDir, fileName); err != nil {
			log.Fatalf("failed to write results: %v", err)
		}
	}

	if *archivePath != "" {
		archiveRun(result)
	}

	if result.TotalIssues() == 0 {
		return 0
	}
	return 1
}

// archiveRun records the run in the sqlite archive. Archive failures are
// logged but never change the validation outcome.
func archiveRun(result *requirements.Result) {
	store, err := resultsdb.NewStore(*archivePath)
	if err != nil {
		monitoring.Logf("failed to open results archive: %v", err)
		return
	}
	defer store.Close()

	run := &resultsdb.Run{
		MapPath:          *mapFile,
		RequirementsPath: *reqFile,
		WarningCount:     result.WarningCount,
		ErrorCount:       result.ErrorCount,
		TotalIssues:      result.TotalIssues(),
		Passed:           result.TotalIssues() == 0,
	}
	if err := store.RecordRun(run, result.Issues); err != nil {
		monitoring.Logf("failed to archive run: %v", err)
		return
	}
	monitoring.Logf("archived run %s (%d issues)", run.RunID, run.TotalIssues)
}
