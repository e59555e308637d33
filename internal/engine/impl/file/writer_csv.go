package file

import (
	"DumpSpectra/internal/model"
	"encoding/csv"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// File names of the tabular artifacts.
const (
	PairsFileName     = "pairs.csv"
	HostsFileName     = "hosts.csv"
	CountsFileName    = "counts.csv"
	AddressesFileName = "addresses.csv"
)

// CSVWriter writes the extracted rows and the per-host counts as CSV tables.
// Every table starts with its header row, even when it has no data rows.
type CSVWriter struct {
	rootPath string
}

// NewCSVWriter creates a new CSV writer rooted at rootPath.
func NewCSVWriter(rootPath string) model.Writer {
	return &CSVWriter{rootPath: rootPath}
}

func (w *CSVWriter) Name() string {
	return "csv"
}

func (w *CSVWriter) Write(result *model.Result) error {
	pairs := make([][]string, 0, len(result.Pairs))
	for _, p := range result.Pairs {
		pairs = append(pairs, []string{p.Source, p.Destination})
	}
	if err := w.writeTable(PairsFileName, []string{"source", "destination"}, pairs); err != nil {
		return err
	}

	hosts := make([][]string, 0, len(result.Hosts))
	for _, h := range result.Hosts {
		hosts = append(hosts, []string{h.MachineName, h.IPAddress, h.Website})
	}
	if err := w.writeTable(HostsFileName, []string{"nom_machine", "adresse_ip", "adresse_site_web"}, hosts); err != nil {
		return err
	}

	if err := w.writeTable(CountsFileName,
		[]string{"source", "count_source", "destination", "count_destination"},
		CountRows(result.Counters)); err != nil {
		return err
	}

	var addresses [][]string
	for _, e := range result.Counters.ByAddress.Entries() {
		addresses = append(addresses, []string{e.Key, strconv.Itoa(e.Count)})
	}
	if err := w.writeTable(AddressesFileName, []string{"address", "count"}, addresses); err != nil {
		return err
	}

	log.Infof("Wrote %d pairs, %d host rows and %d addresses as CSV to %s",
		len(pairs), len(hosts), len(addresses), w.rootPath)
	return nil
}

// CountRows lays out the counts table: every source row first, then every
// destination row, each leaving the other pair of columns empty.
func CountRows(c *model.Counters) [][]string {
	var rows [][]string
	for _, e := range c.BySource.Entries() {
		rows = append(rows, []string{e.Key, strconv.Itoa(e.Count), "", ""})
	}
	for _, e := range c.ByDestination.Entries() {
		rows = append(rows, []string{"", "", e.Key, strconv.Itoa(e.Count)})
	}
	return rows
}

func (w *CSVWriter) writeTable(name string, header []string, rows [][]string) (err error) {
	file, err := create(w.rootPath, name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close '%s': %w", name, cerr)
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("could not write header to '%s': %w", name, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("could not write rows to '%s': %w", name, err)
	}
	return nil
}
