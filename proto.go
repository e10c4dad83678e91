package euronet

import (
	"regexp"
	"strconv"
	"strings"
)

// Command is a body posted to status.xml.
type Command string

const (
	CommandStatus Command = "Sta="
	CommandZones  Command = "Ing=0"
)

var (
	systemRE   = regexp.MustCompile(`<in_state>([\d%]+)</in_state>`)
	ingressiRE = regexp.MustCompile(`<in_state>([\d,]+)</in_state>`)
	gstateRE   = regexp.MustCompile(`<gstate>([^<]*)</gstate>`)
)

// DecodeSystem parses the percent separated in_state of a Sta= response.
// A missing field decodes to all zeros, extra slots are ignored.
func DecodeSystem(xml string) SystemState {
	var state SystemState
	match := systemRE.FindStringSubmatch(xml)
	if match == nil {
		return state
	}
	fill(state[:], strings.Split(match[1], "%"))
	return state
}

// DecodeIngressi parses the comma separated in_state of a Ing=0 response.
// The trailing comma sent by the panel is ignored.
func DecodeIngressi(xml string) IngressiState {
	var state IngressiState
	match := ingressiRE.FindStringSubmatch(xml)
	if match == nil {
		return state
	}
	fill(state[:], strings.Split(strings.TrimRight(match[1], ","), ","))
	return state
}

// DecodeGState returns the program state chars, or an empty string.
func DecodeGState(xml string) string {
	match := gstateRE.FindStringSubmatch(xml)
	if match == nil {
		return ""
	}
	return match[1]
}

func fill(dst []int, tokens []string) {
	for i := 0; i < len(dst) && i < len(tokens); i++ {
		dst[i] = atoi(tokens[i])
	}
}

// empty and unparseable tokens are 0.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
