package analyzer

import (
	"sort"
	"time"

	"github.com/mlindner/waterhub/pkg/logging"
	"github.com/mlindner/waterhub/pkg/report"
)

// PrintStructure walks the topology location by location and reports
// every element at an indentation matching its nesting depth, followed
// by a statistics block with totals and per-type counts.
func (a *Analyzer) PrintStructure() *report.Report {
	start := time.Now()
	rep := report.New()

	rep.Infof(0, "Printing water hierarchy for user %s at time %s ...",
		a.hub.Username(), a.now().Format(timestampFormat))

	var nLocations, nApps, nModules, nInstrs, nAssets int
	appTypeCounts := make(map[string]int)
	moduleTypeCounts := make(map[string]int)
	instrTypeCounts := make(map[string]int)

	for _, location := range a.hierarchy.Locations() {
		nLocations++
		rep.Infof(0, "%s", location)
		for _, app := range a.hierarchy.Applications(location) {
			nApps++
			appTypeCounts[app.Type]++
			rep.Infof(5, "%s", app)
			for _, module := range a.hierarchy.Modules(app) {
				nModules++
				moduleTypeCounts[module.Type]++
				rep.Infof(10, "%s", module)
				for _, instr := range a.hierarchy.Instrumentations(module) {
					nInstrs++
					instrTypeCounts[instr.TypeCode]++
					rep.Infof(15, "%s", instr)
					for _, key := range instr.ValueKeys {
						rep.Infof(20, "Value Key: %s, Thresholds: %v", key, instr.Thresholds[key])
					}
					for _, asset := range a.hierarchy.Assets(instr) {
						nAssets++
						rep.Infof(20, "%s", asset)
					}
				}
			}
		}
	}

	rep.Info(0, "---")
	rep.Info(0, "Statistics:")
	rep.Infof(0, "Locations: %d", nLocations)
	rep.Infof(0, "Applications: %d", nApps)
	reportTypeCounts(rep, appTypeCounts)
	rep.Infof(0, "Modules: %d", nModules)
	reportTypeCounts(rep, moduleTypeCounts)
	rep.Infof(0, "Instrumentations: %d", nInstrs)
	reportTypeCounts(rep, instrTypeCounts)
	rep.Infof(0, "Assets: %d", nAssets)

	a.metrics.RecordAnalysis("structure", time.Since(start), rep.AlertCount(), nil)
	a.log.Debug("structure printed",
		logging.Component("analyzer"),
		logging.Int("locations", nLocations),
		logging.Int("assets", nAssets),
	)
	return rep
}

// reportTypeCounts emits one indented line per type, sorted by type code
func reportTypeCounts(rep *report.Report, counts map[string]int) {
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		rep.Infof(2, "  %s: %d", t, counts[t])
	}
}
