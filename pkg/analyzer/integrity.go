package analyzer

import (
	"time"

	"github.com/mlindner/waterhub/pkg/hierarchy"
	"github.com/mlindner/waterhub/pkg/logging"
	"github.com/mlindner/waterhub/pkg/report"
)

// CheckIntegrity validates the linked topology level by level and
// reports every finding. Validation failures are report entries, never
// errors; the only early stop is an entirely empty location level.
// Running it twice against an unmodified hierarchy yields an identical
// report.
func (a *Analyzer) CheckIntegrity() *report.Report {
	start := time.Now()
	rep := report.New()

	rep.Infof(0, "Checking integrity of water hierarchy for user %s at time %s...",
		a.hub.Username(), a.now().Format(timestampFormat))

	rep.Info(0, "Checking locations ...")
	locations := a.hierarchy.Locations()
	if len(locations) == 0 {
		rep.Alert(0, "No locations found in the water hierarchy.")
		a.finishIntegrity(rep, start)
		return rep
	}

	for _, loc := range locations {
		a.checkLocation(rep, loc, 5)
	}
	rep.Info(0, "Locations checked.")
	rep.Info(0, "Integrity check completed.")

	a.finishIntegrity(rep, start)
	return rep
}

func (a *Analyzer) finishIntegrity(rep *report.Report, start time.Time) {
	a.metrics.RecordAnalysis("integrity", time.Since(start), rep.AlertCount(), nil)
	a.log.Info("integrity check finished",
		logging.Component("analyzer"),
		logging.Int("alerts", rep.AlertCount()),
		logging.Latency(time.Since(start)),
	)
}

func (a *Analyzer) checkLocation(rep *report.Report, location *hierarchy.Node, indent int) {
	rep.Infof(indent, "Checking applications for location %s ...", location)
	apps := a.hierarchy.Applications(location)
	if len(apps) == 0 {
		rep.Alertf(indent, "Location %s has no water_abstraction or water_distribution nodes.", location)
		return
	}

	for _, app := range apps {
		a.checkApplication(rep, app, indent+5)
	}
	rep.Info(indent, "Applications checked.")
}

func (a *Analyzer) checkApplication(rep *report.Report, app *hierarchy.Node, indent int) {
	rep.Infof(indent, "Checking modules for application %s ...", app)
	modules := a.hierarchy.Modules(app)
	if len(modules) == 0 {
		rep.Alertf(indent, "Application %s has no modules.", app)
		return
	}

	for _, module := range modules {
		a.checkModule(rep, module, indent+5)
	}
	rep.Info(indent, "Modules checked.")
}

func (a *Analyzer) checkModule(rep *report.Report, module *hierarchy.Node, indent int) {
	rep.Infof(indent, "Checking instrumentations for module %s ...", module)
	instrs := a.hierarchy.Instrumentations(module)
	if len(instrs) == 0 {
		rep.Alertf(indent, "Module %s has no instrumentations.", module)
		return
	}

	for _, instr := range instrs {
		a.checkInstrumentation(rep, instr, indent+5)
	}
	rep.Info(indent, "Instrumentations checked.")
}

// checkInstrumentation runs every instrumentation-level rule in
// sequence. Only a missing asset link is terminal for the node; all
// other findings accumulate.
func (a *Analyzer) checkInstrumentation(rep *report.Report, instr *hierarchy.Instrumentation, indent int) {
	if len(a.hierarchy.Assets(instr)) == 0 {
		rep.Alertf(indent, "Instrumentation %s has no assets.", instr)
		return
	}

	if instr.Type == hierarchy.TypeUndefined {
		rep.Alertf(indent, "Instrumentation %s has type 'undefined'.", instr)
	}
	if instr.PrimaryValueKey == "" {
		rep.Alertf(indent, "Instrumentation %s has no primary value key specification.", instr)
	}
	if len(instr.ValueKeys) == 0 {
		rep.Alertf(indent, "Instrumentation %s has no value keys/values.", instr)
	}

	switch instr.Type {
	case hierarchy.TypeFlow:
		a.checkFlowKeys(rep, instr, indent)
	case hierarchy.TypePressure, hierarchy.TypeAnalysis:
		a.checkThresholdPairs(rep, instr, indent)
	case hierarchy.TypePump:
		if !instr.HasValueKey("individual_pump_on") {
			rep.Alertf(indent, "Instrumentation %s of type 'pump' has no 'individual_pump_on' value key.", instr)
		}
	case hierarchy.TypeUndefined, hierarchy.TypeOther:
		// no type-specific value-key requirements
	}
}

// checkFlowKeys requires totalizer1 and volumeflow; the upper-threshold
// rule only applies when volumeflow itself is declared.
func (a *Analyzer) checkFlowKeys(rep *report.Report, instr *hierarchy.Instrumentation, indent int) {
	if !instr.HasValueKey("totalizer1") {
		rep.Alertf(indent, "Instrumentation %s of type 'flow' has no 'totalizer1' value key.", instr)
	}

	if !instr.HasValueKey("volumeflow") {
		rep.Alertf(indent, "Instrumentation %s of type 'flow' has no 'volumeflow' value key.", instr)
		return
	}
	if _, ok := instr.ThresholdOfKind("volumeflow", hierarchy.KindUpper); !ok {
		rep.Alertf(indent, "Instrumentation %s of type 'flow' has no upper threshold for 'volumeflow'.", instr)
	}
}

// checkThresholdPairs requires an upper and a lower threshold on every
// declared value key of pressure and analysis instrumentations.
func (a *Analyzer) checkThresholdPairs(rep *report.Report, instr *hierarchy.Instrumentation, indent int) {
	rep.Infof(indent, "Checking thresholds for instrumentation %s of type '%s' ...", instr, instr.Type)
	for _, key := range instr.ValueKeys {
		if _, ok := instr.ThresholdOfKind(key, hierarchy.KindUpper); !ok {
			rep.Alertf(indent, "Instrumentation %s of type '%s' has no upper threshold for '%s'.", instr, instr.Type, key)
		}
		if _, ok := instr.ThresholdOfKind(key, hierarchy.KindLower); !ok {
			rep.Alertf(indent, "Instrumentation %s of type '%s' has no lower threshold for '%s'.", instr, instr.Type, key)
		}
	}
}
