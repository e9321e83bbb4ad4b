// Package tracker provides the per-run context of an experiment: the run
// directory layout, the run logger and the scalar writer.
//
// A Tracker is created once per run from a resolved *hparams.View, passed
// explicitly to the components that log, and closed when the run ends:
//
//	cfg := hparams.MustLoad("train.yaml")
//	run, err := tracker.New(cfg, model, tracker.WithSuffix("bs", 64))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer run.Close()
//
//	run.LogResults(map[string]float64{"loss": 0.42}, epoch, "train")
//
// Layout under the configured result_dir:
//
//	<result_dir>/<model>[_<suffix>]/run<N>/
//	    train.log
//	    hparams.yaml
//	    tb/scalars.jsonl
package tracker
