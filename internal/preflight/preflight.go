package preflight

import "fitfaker/internal/config"

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks that apply to a profile's batch run.
func RunAll(profile *config.Profile, outputDir string) []Result {
	var results []Result

	if profile.FitFilesDir != "" {
		results = append(results, CheckDirectoryAccess("Activity directory", profile.FitFilesDir))
	} else {
		results = append(results, Result{
			Name:   "Activity directory",
			Detail: "not configured and not detected (set fit_files_dir)",
		})
	}

	if outputDir != "" {
		results = append(results, CheckDirectoryAccess("Output directory", outputDir))
		results = append(results, CheckFreeSpace("Output free space", outputDir))
	}

	return results
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
