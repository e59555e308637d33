package alerter

import (
	"DumpSpectra/internal/config"
	"DumpSpectra/internal/model"
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	log "github.com/sirupsen/logrus"
)

// Alerter evaluates the result of a run against predefined rules and
// triggers a notification if any rule fires.
type Alerter struct {
	rules    []config.AlerterRule
	notifier model.Notifier
}

// NewAlerter creates a new Alerter instance. A nil notifier only logs.
func NewAlerter(cfg *config.AlerterConfig, notifier model.Notifier) *Alerter {
	return &Alerter{rules: cfg.Rules, notifier: notifier}
}

// Metrics returns the values rules can refer to. The suspects metric is
// missing when the detector had no data.
func Metrics(result *model.Result) map[string]float64 {
	c := result.Counters
	m := map[string]float64{
		"frames":               float64(c.Frames),
		"http_only":            float64(c.HTTPOnly()),
		"https":                float64(c.Protocol(model.ProtoHTTPS)),
		"ssh":                  float64(c.Protocol(model.ProtoSSH)),
		"dns":                  float64(c.Protocol(model.ProtoDNS)),
		"icmp":                 float64(c.ICMPTotal()),
		"syn":                  float64(c.Flag(model.FlagSYN)),
		"syn_ack":              float64(c.Flag(model.FlagSYNACK)),
		"fin":                  float64(c.Flag(model.FlagFIN)),
		"push":                 float64(c.Flag(model.FlagPUSH)),
		"ack_only":             float64(c.Flag(model.FlagACKOnly)),
		"malformed_timestamps": float64(c.MalformedTimestamps),
		"addresses":            float64(c.ByAddress.Len()),
	}
	if result.Anomalies != nil {
		m["suspects"] = float64(len(result.Anomalies.Suspects))
	}
	return m
}

// Evaluate returns one Markdown message per triggered rule, in rule order.
func (a *Alerter) Evaluate(result *model.Result) []string {
	metrics := Metrics(result)

	var triggered []string
	for _, rule := range a.rules {
		value, ok := metrics[rule.Metric]
		if !ok {
			log.WithField("rule", rule.Name).Debugf("Metric '%s' not available for this run", rule.Metric)
			continue
		}
		if !check(value, rule.Threshold, rule.Operator) {
			continue
		}
		triggered = append(triggered, fmt.Sprintf("### Alert: %s\n\n"+
			"- **Capture:** `%s`\n"+
			"- **Metric:** `%s`\n"+
			"- **Condition:** `%s %.2f`\n"+
			"- **Value:** %.2f\n",
			rule.Name, result.Source, rule.Metric, rule.Operator, rule.Threshold, value))
	}
	return triggered
}

// Run evaluates the rules and sends one consolidated notification.
// It returns the number of triggered rules.
func (a *Alerter) Run(result *model.Result) (int, error) {
	messages := a.Evaluate(result)
	if len(messages) == 0 {
		return 0, nil
	}

	log.Infof("Alerter evaluation completed. %d alert(s) triggered.", len(messages))

	md := "# DumpSpectra Alert Summary\n\n" +
		"The following alerts were triggered by the last run:\n\n---\n\n" +
		strings.Join(messages, "\n---\n\n")

	if a.notifier == nil {
		log.Warn("No notifier configured, alert summary not sent")
		return len(messages), nil
	}

	body := string(markdown.ToHTML([]byte(md), nil, nil))
	subject := fmt.Sprintf("DumpSpectra Alert Summary (%d Triggered)", len(messages))
	if err := a.notifier.Send(subject, body); err != nil {
		return len(messages), fmt.Errorf("failed to send alert notification: %w", err)
	}
	log.Info("Consolidated alert notification sent successfully.")
	return len(messages), nil
}

// check compares a value against a threshold based on an operator.
func check(value, threshold float64, operator string) bool {
	switch operator {
	case ">":
		return value > threshold
	case "<":
		return value < threshold
	case "=":
		return value == threshold
	case ">=":
		return value >= threshold
	case "<=":
		return value <= threshold
	default:
		log.Warnf("Unknown operator '%s' in alerter rule", operator)
		return false
	}
}
