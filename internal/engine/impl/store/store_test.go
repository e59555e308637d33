package store

import (
	"DumpSpectra/internal/model"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func sampleResult() *model.Result {
	c := model.NewCounters()
	c.Frames = 4
	c.BySource.Add("BP-Linux8", 3)
	c.BySource.Add("par.1e100", 1)
	c.ByDestination.Add("par.1e100", 3)
	c.ByAddress.Add("BP-Linux8.ssh", 3)
	c.ByProtocol.Add(string(model.ProtoSSH), 2)
	c.ByFlag.Add(string(model.FlagPUSH), 1)
	c.Pairs.Inc(model.Pair{Source: "BP-Linux8", Destination: "par.1e100"})
	return &model.Result{
		Source:    "capture.txt",
		Mode:      model.ModeAnalyze,
		Generated: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Counters:  c,
		Anomalies: &model.AnomalyReport{Mean: 3, Suspects: []model.Entry{}},
	}
}

func TestCounterRows(t *testing.T) {
	rows := CounterRows(sampleResult().Counters)
	want := []CounterRow{
		{Category: CategorySource, Key: "BP-Linux8", Count: 3, Position: 0},
		{Category: CategorySource, Key: "par.1e100", Count: 1, Position: 1},
		{Category: CategoryDestination, Key: "par.1e100", Count: 3, Position: 0},
		{Category: CategoryAddress, Key: "BP-Linux8.ssh", Count: 3, Position: 0},
		{Category: CategoryProtocol, Key: "ssh", Count: 2, Position: 0},
		{Category: CategoryFlag, Key: "PUSH", Count: 1, Position: 0},
		{Category: CategoryPair, Key: "BP-Linux8 > par.1e100", Count: 1, Position: 0},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("CounterRows() = %+v\nwant %+v", rows, want)
	}
}

func TestSQLiteWriter(t *testing.T) {
	dir := t.TempDir()
	w, err := NewSQLiteWriter(filepath.Join(dir, "nested", "runs.db"))
	if err != nil {
		t.Fatalf("NewSQLiteWriter error: %v", err)
	}
	defer w.Close()

	if err := w.Write(sampleResult()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := w.Write(sampleResult()); err != nil {
		t.Fatalf("second Write error: %v", err)
	}

	id, err := w.LatestRunID()
	if err != nil {
		t.Fatalf("LatestRunID error: %v", err)
	}
	if id != 2 {
		t.Errorf("LatestRunID() = %d, want 2", id)
	}

	sources, err := w.QueryCounters(id, CategorySource)
	if err != nil {
		t.Fatalf("QueryCounters error: %v", err)
	}
	want := []model.Entry{{Key: "BP-Linux8", Count: 3}, {Key: "par.1e100", Count: 1}}
	if !reflect.DeepEqual(sources, want) {
		t.Errorf("QueryCounters() = %v, want %v", sources, want)
	}
}

func TestSQLiteWriterEmptyDatabase(t *testing.T) {
	w, err := NewSQLiteWriter(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("NewSQLiteWriter error: %v", err)
	}
	defer w.Close()

	id, err := w.LatestRunID()
	if err != nil {
		t.Fatalf("LatestRunID error: %v", err)
	}
	if id != 0 {
		t.Errorf("LatestRunID() = %d, want 0", id)
	}
}

func TestEncodeSummary(t *testing.T) {
	data, err := EncodeSummary(sampleResult())
	if err != nil {
		t.Fatalf("EncodeSummary error: %v", err)
	}

	var got structpb.Struct
	if err := proto.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	fields := got.GetFields()
	if fields["frames"].GetNumberValue() != 4 {
		t.Errorf("frames = %v, want 4", fields["frames"])
	}
	if fields["source"].GetStringValue() != "capture.txt" {
		t.Errorf("source = %v, want capture.txt", fields["source"])
	}
	if fields["protocols"].GetStructValue().GetFields()["ssh"].GetNumberValue() != 2 {
		t.Errorf("protocols = %v", fields["protocols"])
	}
	if _, ok := fields["mean"]; !ok {
		t.Error("mean missing from summary with anomaly data")
	}
}

func TestSummaryStructNoData(t *testing.T) {
	result := sampleResult()
	result.Anomalies = nil
	s, err := SummaryStruct(result)
	if err != nil {
		t.Fatalf("SummaryStruct error: %v", err)
	}
	if _, ok := s.GetFields()["mean"]; ok {
		t.Error("mean present without anomaly data")
	}
}
