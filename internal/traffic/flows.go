package traffic

import (
	"strconv"
	"strings"

	"github.com/wrtmon/wrtmon/internal/model"
	"github.com/wrtmon/wrtmon/internal/section"
)

const (
	// OutMarker and InMarker are the direction glyphs the sampler prints
	// on the two lines of each record.
	OutMarker = "=>"
	InMarker  = "<="

	// DefaultFlowPort is assumed when the sampler gives no destination
	// port. Best-effort guess: on a home network nearly all unlabeled
	// traffic is HTTPS.
	DefaultFlowPort = 443
)

// FlowParser turns paired sampler lines into classified flow records.
type FlowParser struct {
	classifier *Classifier
}

func NewFlowParser(classifier *Classifier) *FlowParser {
	return &FlowParser{classifier: classifier}
}

// Parse extracts flows from raw sampler output lines. Lines without a
// direction marker are ignored and a structurally broken pair is dropped
// without affecting the pairs around it.
func (p *FlowParser) Parse(lines []string) []model.Flow {
	pairs := section.SplitPairs(lines, OutMarker, InMarker)
	flows := make([]model.Flow, 0, len(pairs))
	for _, pair := range pairs {
		if flow, ok := p.parsePair(pair[0], pair[1]); ok {
			flows = append(flows, flow)
		}
	}
	return flows
}

func (p *FlowParser) parsePair(out, in string) (model.Flow, bool) {
	before, after, found := strings.Cut(out, OutMarker)
	if !found {
		return model.Flow{}, false
	}

	srcFields := strings.Fields(before)
	if len(srcFields) == 0 {
		return model.Flow{}, false
	}
	src := parseEndpoint(srcFields[len(srcFields)-1], 0)

	dst, ok := parseDestination(strings.Fields(after))
	if !ok {
		return model.Flow{}, false
	}

	inFields := strings.Fields(in)
	if len(inFields) == 0 {
		return model.Flow{}, false
	}
	bandwidth := inFields[len(inFields)-1]

	label, tag := p.classifier.Classify(dst.Addr, dst.Port)
	return model.Flow{
		Source:      src,
		Destination: dst,
		Bandwidth:   bandwidth,
		Label:       label,
		Tag:         tag,
	}, true
}

// parseDestination reads the destination endpoint from the fields after the
// outbound marker: either a single addr:port token or an addr token with
// the port as the following field. With no recoverable port the flow is
// assumed to be DefaultFlowPort.
func parseDestination(fields []string) (model.Endpoint, bool) {
	if len(fields) == 0 {
		return model.Endpoint{}, false
	}
	ep := parseEndpoint(fields[0], DefaultFlowPort)
	if !strings.Contains(fields[0], ":") && len(fields) > 1 {
		if port, err := strconv.Atoi(fields[1]); err == nil {
			ep.Port = port
		}
	}
	return ep, true
}

// parseEndpoint splits a trailing numeric :port off an address token.
func parseEndpoint(token string, defaultPort int) model.Endpoint {
	if idx := strings.LastIndex(token, ":"); idx > 0 {
		if port, err := strconv.Atoi(token[idx+1:]); err == nil {
			return model.Endpoint{Addr: token[:idx], Port: port}
		}
	}
	return model.Endpoint{Addr: token, Port: defaultPort}
}
