package aisvc

import (
	"context"
	"fmt"
	"strings"

	"github.com/trezcool/mbatrack/core/casestudy"
	"github.com/trezcool/mbatrack/core/deadline"
)

var (
	_ deadline.Prioritizer           = (*Client)(nil)
	_ casestudy.FrameworkRecommender = (*Client)(nil)
	_ casestudy.Rater                = (*Client)(nil)
)

const prioritizerSystem = `You are an MBA productivity expert. Analyze the list of upcoming non-completed academic deadlines.
Based on proximity to the current date and the general nature of MBA deadlines (e.g., exams and major assignments are High, small tasks are Medium/Low), generate two outputs:
1. An "overallSummary" of exactly three motivating sentences: The first sentence must state the total number of urgent tasks. The second must name the most critical task and give a single action item. The third must be a general encouraging statement.
2. A "prioritizedList" containing the unique IDs and a High/Medium/Low priority for the top 5 most urgent deadlines.`

var prioritySchema = map[string]interface{}{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"overallSummary", "prioritizedList"},
	"properties": map[string]interface{}{
		"overallSummary": map[string]interface{}{"type": "string"},
		"prioritizedList": map[string]interface{}{
			"type":     "array",
			"maxItems": deadline.MaxRanked,
			"items": map[string]interface{}{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"id", "priority"},
				"properties": map[string]interface{}{
					"id":       map[string]interface{}{"type": "string"},
					"priority": map[string]interface{}{"type": "string", "enum": []string{"High", "Medium", "Low"}},
				},
			},
		},
	},
}

func (c *Client) Prioritize(ctx context.Context, req deadline.PriorityRequest) (deadline.PrioritySummary, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Current Date: %s\nDeadlines:\n", req.CurrentDate)
	for _, d := range req.Deadlines {
		fmt.Fprintf(&sb, "- [%s] %s: %q due on %s\n", d.ID, d.Course, d.Title, d.DueDate)
	}

	var out struct {
		OverallSummary  string `json:"overallSummary"`
		PrioritizedList []struct {
			ID       string `json:"id"`
			Priority string `json:"priority"`
		} `json:"prioritizedList"`
	}
	if err := c.generateJSON(ctx, prioritizerSystem, sb.String(), "deadline_priorities", prioritySchema, &out); err != nil {
		return deadline.PrioritySummary{}, err
	}

	summary := deadline.PrioritySummary{
		OverallSummary:  out.OverallSummary,
		PrioritizedList: make([]deadline.RankedDeadline, 0, len(out.PrioritizedList)),
	}
	for _, r := range out.PrioritizedList {
		summary.PrioritizedList = append(summary.PrioritizedList, deadline.RankedDeadline{ID: r.ID, Priority: deadline.Priority(r.Priority)})
	}
	return summary, nil
}

const frameworksSystem = `You are an expert in business strategy and analysis. Given the title and subject of a case study, recommend a list of relevant business frameworks that can be used to analyze the case.
Consider frameworks like Porter's Five Forces, SWOT Analysis, PESTLE, Value Chain Analysis, and others.`

var frameworksSchema = map[string]interface{}{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"frameworks"},
	"properties": map[string]interface{}{
		"frameworks": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
	},
}

func (c *Client) RecommendFrameworks(ctx context.Context, req casestudy.FrameworkRequest) ([]string, error) {
	user := fmt.Sprintf("Case Title: %s\nCase Subject: %s", req.CaseTitle, req.CaseSubject)

	var out struct {
		Frameworks []string `json:"frameworks"`
	}
	if err := c.generateJSON(ctx, frameworksSystem, user, "framework_recommendations", frameworksSchema, &out); err != nil {
		return nil, err
	}
	return out.Frameworks, nil
}

const raterSystem = `You are an MBA professor grading a student's case study analysis.
Score each dimension from 0 (missing) to 5 (excellent): problemDefinition (is the core problem clearly stated?), analysis (are frameworks and SWOT used rigorously?), alternatives (are the alternative solutions realistic and weighed with pros and cons?), recommendation (is the recommendation justified and actionable?).
Give an overall score from 0 to 5 and short, constructive feedback in at most four sentences.`

var scorecardSchema = func() map[string]interface{} {
	score := map[string]interface{}{"type": "integer", "minimum": 0, "maximum": casestudy.MaxScore}
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"problemDefinition", "analysis", "alternatives", "recommendation", "overall", "feedback"},
		"properties": map[string]interface{}{
			"problemDefinition": score,
			"analysis":          score,
			"alternatives":      score,
			"recommendation":    score,
			"overall":           score,
			"feedback":          map[string]interface{}{"type": "string"},
		},
	}
}()

func caseStudyPrompt(cs casestudy.CaseStudy) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Case Title: %s\nCase Subject: %s\nProtagonist: %s\nCore Problem: %s\n", cs.Title, cs.Subject, cs.Protagonist, cs.CoreProblem)
	fmt.Fprintf(&sb, "Strengths: %s\nWeaknesses: %s\nOpportunities: %s\nThreats: %s\n", cs.Strengths, cs.Weaknesses, cs.Opportunities, cs.Threats)
	fmt.Fprintf(&sb, "Frameworks: %s\n", strings.Join(cs.Frameworks, ", "))
	for k, v := range cs.FrameworkInputs {
		fmt.Fprintf(&sb, "Framework input %s: %v\n", k, v)
	}
	sb.WriteString("Alternative Solutions:\n")
	for i, alt := range cs.AlternativeSolutions {
		fmt.Fprintf(&sb, "%d. %s (pros: %s; cons: %s)\n", i+1, alt.Solution, alt.Pros, alt.Cons)
	}
	fmt.Fprintf(&sb, "Recommendation: %s\nJustification: %s\n", cs.Recommendation, cs.Justification)
	return sb.String()
}

func (c *Client) Rate(ctx context.Context, cs casestudy.CaseStudy) (casestudy.Scorecard, error) {
	var out struct {
		ProblemDefinition int    `json:"problemDefinition"`
		Analysis          int    `json:"analysis"`
		Alternatives      int    `json:"alternatives"`
		Recommendation    int    `json:"recommendation"`
		Overall           int    `json:"overall"`
		Feedback          string `json:"feedback"`
	}
	if err := c.generateJSON(ctx, raterSystem, caseStudyPrompt(cs), "case_study_scorecard", scorecardSchema, &out); err != nil {
		return casestudy.Scorecard{}, err
	}
	return casestudy.Scorecard(out), nil
}
