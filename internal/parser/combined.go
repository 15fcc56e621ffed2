package parser

import (
	"regexp"
)

// CombinedPattern is the combined access-log grammar:
//
//	<address> <ident> <user> [<date>] "<request>" <status> <bytes> "<referrer>" "<agent>"
//
// The match is unanchored and every quoted or bracketed segment is
// non-greedy, so surrounding whitespace or trailing fields are tolerated.
const CombinedPattern = `(?P<address>\S+) \S+ \S+ \[(?P<date>.*?)\] "(?P<request>.*?)" (?P<status>\d{3}) (?P<bytes>\S+) "(?P<referrer>.*?)" "(?P<agent>.*?)"`

// Match holds the raw fields captured from one line
type Match struct {
	Address  string
	Date     string
	Request  string
	Status   string
	Bytes    string
	Referrer string
	Agent    string
}

// CombinedParser matches lines against CombinedPattern. It is safe for
// concurrent use.
type CombinedParser struct {
	pattern *regexp.Regexp

	address  int
	date     int
	request  int
	status   int
	bytes    int
	referrer int
	agent    int
}

var combinedRegexp = regexp.MustCompile(CombinedPattern)

// NewCombinedParser creates a parser for the combined log format
func NewCombinedParser() *CombinedParser {
	re := combinedRegexp
	return &CombinedParser{
		pattern:  re,
		address:  re.SubexpIndex("address"),
		date:     re.SubexpIndex("date"),
		request:  re.SubexpIndex("request"),
		status:   re.SubexpIndex("status"),
		bytes:    re.SubexpIndex("bytes"),
		referrer: re.SubexpIndex("referrer"),
		agent:    re.SubexpIndex("agent"),
	}
}

// Parse extracts the combined-format fields from line. A line that does not
// fit the grammar yields a *SkipError wrapping ErrNoMatch.
func (p *CombinedParser) Parse(line string) (Match, error) {
	m := p.pattern.FindStringSubmatch(line)
	if m == nil {
		return Match{}, &SkipError{Reason: ReasonUnmatched, Input: line, Err: ErrNoMatch}
	}

	return Match{
		Address:  m[p.address],
		Date:     m[p.date],
		Request:  m[p.request],
		Status:   m[p.status],
		Bytes:    m[p.bytes],
		Referrer: m[p.referrer],
		Agent:    m[p.agent],
	}, nil
}

// Name returns the parser name
func (p *CombinedParser) Name() string {
	return "combined"
}
