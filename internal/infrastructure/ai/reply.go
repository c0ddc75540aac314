package ai

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	// jsonFence matches a reply wrapped entirely in a ```json fence.
	jsonFence = regexp.MustCompile("(?s)^```(?:json|JSON)?[ \t]*\r?\n(.*?)\r?\n?```$")
	// pythonBlock matches fenced Python code blocks.
	pythonBlock = regexp.MustCompile("(?s)```(?:python|py|python3)[ \t]*\r?\n(.*?)```")
	// leadingFence and trailingFence match the markers of a block that wraps the whole text.
	leadingFence  = regexp.MustCompile("^```[A-Za-z0-9_+-]*[ \t]*\r?\n")
	trailingFence = regexp.MustCompile("\r?\n?```[ \t]*$")
)

var errNoAnalysis = errors.New("reply contains no analysis text")

type modelReply struct {
	Analysis string
	Code     string
}

// parseReply splits a model reply into analysis prose and refactored code.
// JSON replies ({"analysis": ..., "code": ...}) are preferred; otherwise the
// last fenced Python block is taken as code and the rest as analysis.
func parseReply(text string) (modelReply, error) {
	text = strings.TrimSpace(text)

	if reply, ok := parseJSONReply(text); ok {
		if reply.Analysis == "" {
			return modelReply{}, errNoAnalysis
		}
		return reply, nil
	}

	reply := modelReply{Analysis: text}
	blocks := pythonBlock.FindAllStringSubmatchIndex(text, -1)
	if len(blocks) > 0 {
		last := blocks[len(blocks)-1]
		reply.Code = strings.TrimSpace(text[last[2]:last[3]])
		reply.Analysis = strings.TrimSpace(text[:last[0]] + text[last[1]:])
	}
	if reply.Analysis == "" {
		return modelReply{}, errNoAnalysis
	}
	return reply, nil
}

func parseJSONReply(text string) (modelReply, bool) {
	candidate := text
	if m := jsonFence.FindStringSubmatch(candidate); m != nil {
		candidate = strings.TrimSpace(m[1])
	}
	if !strings.HasPrefix(candidate, "{") {
		return modelReply{}, false
	}
	var payload struct {
		Analysis *string `json:"analysis"`
		Code     *string `json:"code"`
	}
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return modelReply{}, false
	}
	if payload.Analysis == nil && payload.Code == nil {
		return modelReply{}, false
	}
	var reply modelReply
	if payload.Analysis != nil {
		reply.Analysis = strings.TrimSpace(*payload.Analysis)
	}
	if payload.Code != nil {
		reply.Code = stripFences(*payload.Code)
	}
	return reply, true
}

// stripFences removes a markdown fence such as ```python ... ``` wrapping the
// code. Fences inside the code, in a docstring for instance, are kept.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	loc := leadingFence.FindStringIndex(text)
	if loc == nil {
		return text
	}
	text = trailingFence.ReplaceAllString(text[loc[1]:], "")
	return strings.TrimSpace(text)
}
