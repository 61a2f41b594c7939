package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-tfpg/pkg/config"
	"github.com/dd0wney/cluso-tfpg/pkg/engine"
	"github.com/dd0wney/cluso-tfpg/pkg/hypothesis"
	"github.com/dd0wney/cluso-tfpg/pkg/ingest"
	"github.com/dd0wney/cluso-tfpg/pkg/loader"
	"github.com/dd0wney/cluso-tfpg/pkg/logging"
	"github.com/dd0wney/cluso-tfpg/pkg/metrics"
	"github.com/dd0wney/cluso-tfpg/pkg/model"
	"github.com/dd0wney/cluso-tfpg/pkg/prognosis"
	"github.com/dd0wney/cluso-tfpg/pkg/refine"
)

func main() {
	configPath := flag.String("config", "", "Optional YAML config file")
	refinePath := flag.String("refine", "", "Labeled-trace dataset: run model refinement instead of a simulation")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	badArgs := len(args) < 2 || len(args) > 4
	if *refinePath != "" {
		// Refinement mode takes the model only
		badArgs = len(args) != 1
	}
	if badArgs {
		usage()
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: could not load config: %v\n", err)
			os.Exit(1)
		}
	}

	threshold := cfg.CriticalityThreshold
	if len(args) >= 3 {
		t, err := strconv.Atoi(args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: criticality threshold must be an integer: %v\n", err)
			os.Exit(1)
		}
		threshold = t
	}

	logger := logging.NewNopLogger()
	if len(args) == 4 {
		logFile, err := os.Create(args[3])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: could not open log file: %v\n", err)
			os.Exit(1)
		}
		defer logFile.Close()
		logger = logging.NewJSONLogger(logFile, logging.ParseLevel(cfg.LogLevel))
	}
	logger = logger.With(logging.String("run_id", uuid.NewString()))

	var err error
	if *refinePath != "" {
		err = runRefinement(args[0], *refinePath, cfg, logger)
	} else {
		err = run(args[0], args[1], threshold, logger)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr,
		"Usage: %s [-config file.yaml] <model.json> <scenario.json> [criticality_threshold] [output_log_path]\n"+
			"       %s [-config file.yaml] -refine <dataset.json> <model.json>\n",
		os.Args[0], os.Args[0])
}

// runRefinement loads a labeled-trace dataset and drives the optimizer with
// the configured tentative-edge interval.
func runRefinement(modelPath, datasetPath string, cfg config.Config, logger logging.Logger) error {
	m, err := loader.LoadModelFile(modelPath)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	ds, err := loader.LoadDatasetFile(datasetPath)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	if _, ok := m.Node(ds.TargetNodeID); !ok {
		return fmt.Errorf("refine target: %w: %q", model.ErrNodeNotFound, ds.TargetNodeID)
	}
	for _, cand := range ds.Candidates {
		if cand.Predicate == nil {
			continue
		}
		if _, ok := m.Signal(cand.Predicate.SignalRef); !ok {
			return fmt.Errorf("candidate %q: %w: %q",
				cand.ID, model.ErrSignalNotFound, cand.Predicate.SignalRef)
		}
	}

	traces := make([]refine.LabeledTrace, 0, len(ds.Traces))
	for _, tr := range ds.Traces {
		ing := ingest.New(m)
		for _, s := range tr.Samples {
			if err := ing.Ingest(s); err != nil {
				return fmt.Errorf("ingest trace: %w", err)
			}
		}
		traces = append(traces, refine.LabeledTrace{
			Ingestor:           ing,
			ExpectedActivation: tr.ExpectedActivation,
		})
	}

	interval := refine.Interval{
		TimeMinMS: cfg.RefinementIntervalMinMS,
		TimeMaxMS: cfg.RefinementIntervalMaxMS,
	}
	opt := refine.NewWithOptions(m, interval, logger)

	before := opt.DiagnosisError(ds.TargetNodeID, traces)
	fmt.Printf("Refining %s over %d traces (DE %.4f)\n", ds.TargetNodeID, len(traces), before)

	opt.Refine(ds.TargetNodeID, ds.Candidates, traces)

	after := opt.DiagnosisError(ds.TargetNodeID, traces)
	fmt.Printf("Refinement complete. DE %.4f -> %.4f. Nodes: %d, Edges: %d\n",
		before, after, len(m.Nodes()), len(m.Edges()))
	return nil
}

func run(modelPath, scenarioPath string, threshold int, logger logging.Logger) error {
	m, err := loader.LoadModelFile(modelPath)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	scenario, err := loader.LoadScenarioFile(scenarioPath)
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}

	ing := ingest.New(m)
	eng := engine.NewWithLogger(m, logger)
	tracker := hypothesis.New(m)
	prog := prognosis.New(m)
	reg := metrics.DefaultRegistry()

	logger.Info("system initialized",
		logging.Scenario(scenario.ScenarioID),
		logging.Int("nodes", len(m.Nodes())),
		logging.Int("edges", len(m.Edges())))
	fmt.Printf("System Initialized. Nodes: %d\n", len(m.Nodes()))
	fmt.Printf("Starting Simulation: %s\n\n", scenario.ScenarioID)

	seenActive := make(map[string]struct{})
	for _, sample := range scenario.Samples {
		if err := ing.Ingest(sample); err != nil {
			reg.SampleOrderingFailures.Inc()
			return fmt.Errorf("ingest: %w", err)
		}
		reg.RecordSample(sample.IsFailureMode)
		eng.Apply(sample)
		states := eng.States()

		active := states.ActiveIDs()
		for _, id := range active {
			if _, ok := seenActive[id]; ok {
				continue
			}
			seenActive[id] = struct{}{}
			if node, ok := m.Node(id); ok {
				reg.RecordActivation(node.Type.String(), len(active))
			}
		}

		start := time.Now()
		diagnoses := tracker.Diagnose(states)

		top := 0.0
		if len(diagnoses) > 0 {
			top = diagnoses[0].Plausibility
		}
		reg.RecordDiagnosis(time.Since(start), top, len(diagnoses))

		if len(diagnoses) == 0 {
			continue
		}
		printReport(m, states, diagnoses, prog, threshold, sample.TimestampMS, reg)
	}

	fmt.Println("\nSimulation Complete.")
	return nil
}

func printReport(m *model.Model, states engine.StateSnapshot, diagnoses []hypothesis.Diagnosis,
	prog *prognosis.Prognoser, threshold int, nowMS uint64, reg *metrics.Registry) {

	fmt.Println("==============================================================================")
	fmt.Printf("[Time: %dms] DIAGNOSTIC REPORT\n", nowMS)
	fmt.Println("==============================================================================")

	for _, diag := range diagnoses {
		fmt.Printf("\nHypothesis: %s (%s)\n", diag.FailureModeID, diag.FailureModeName)
		fmt.Println("------------------------------------------------------------------------------")
		fmt.Printf(" * Plausibility: %.1f%% | Aggregate Robustness: %.4f\n",
			diag.Plausibility*100, diag.AggregateRobustness)

		fmt.Printf(" * Expected Discrepancies: %d (", len(diag.ExpectedSymptomIDs))
		for i, id := range diag.ExpectedSymptomIDs {
			if i > 0 {
				fmt.Print(", ")
			}
			fmt.Print(id)
		}
		fmt.Println(")")

		fmt.Printf(" * Observed Discrepancies: %d\n", len(diag.ConsistentSymptomIDs))
		for _, id := range diag.ConsistentSymptomIDs {
			st := states[id]
			fmt.Printf("   - %s: Activated at t=%dms", id, st.ActivationTimeMS)
			if node, ok := m.Node(id); ok && node.Predicate != nil {
				name := node.Predicate.SignalRef
				if sig, ok := m.Signal(node.Predicate.SignalRef); ok {
					name = sig.SourceName
				}
				fmt.Printf(" (%s: %v%s%v)", name, st.TriggerValue, node.Predicate.Op, node.Predicate.Threshold)
			}
			fmt.Println(".")
		}

		result := prog.TTC(states, threshold, nowMS)
		reg.RecordPrognosis(result.TTCMS)
		fmt.Println(" * Prognosis:")
		switch {
		case math.IsInf(result.TTCMS, 1):
			fmt.Println("   - System appears stable; no critical failure path detected from this state.")
		case result.TTCMS > 0:
			fmt.Printf("   - WARNING: Time-To-Criticality (TTC) is %.0f ms (node %s).\n",
				result.TTCMS, result.CriticalNodeID)
		case result.TTCMS == 0:
			fmt.Println("   - CRITICAL: A critical failure condition has been reached.")
		default:
			fmt.Printf("   - STATUS: Critical propagation stalled. Prediction overdue by %.0f ms (Latent Risk).\n",
				math.Abs(result.TTCMS))
		}
	}
	fmt.Println("==============================================================================")
}
