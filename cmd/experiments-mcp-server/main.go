package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"experiment-bot/internal/buildcache"
	"experiment-bot/internal/buildsource"
	"experiment-bot/internal/config"
	"experiment-bot/internal/experiments"
	"experiment-bot/internal/page"
	"experiment-bot/internal/paging"
)

// LookupParams are the arguments of experiment_lookup.
type LookupParams struct {
	Query     string `json:"query" mcp:"experiment name or ID to search for"`
	BuildHash string `json:"build_hash,omitempty" mcp:"build hash; latest build when empty"`
}

// PageParams are the arguments of experiment_page.
type PageParams struct {
	Page      int    `json:"page,omitempty" mcp:"1-based page number, 20 experiments per page"`
	BuildHash string `json:"build_hash,omitempty" mcp:"build hash; latest build when empty"`
}

type buildFetcher interface {
	FetchBuild(ctx context.Context, hash string) (*experiments.Build, error)
}

// ExperimentsMCPServer exposes experiment lookup and browsing as MCP tools.
type ExperimentsMCPServer struct {
	builds  buildFetcher
	matcher experiments.Matcher
}

func NewExperimentsMCPServer(builds buildFetcher) *ExperimentsMCPServer {
	return &ExperimentsMCPServer{builds: builds, matcher: experiments.DefaultMatcher}
}

func errorResult(format string, args ...any) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
	}
}

// pageText renders a page as plain markdown text.
func pageText(p page.Page) string {
	var parts []string
	if c, ok := p.Content(); ok && c != "" {
		parts = append(parts, c)
	}
	es, _ := p.Embeds()
	for _, e := range es {
		s := "**" + e.Title + "**\n" + e.Description
		for _, f := range e.Fields {
			s += "\n\n**" + f.Name + "**\n" + f.Value
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n\n")
}

func (s *ExperimentsMCPServer) Lookup(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[LookupParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	logrus.Infof("MCP experiment_lookup query=%q build=%q", args.Query, args.BuildHash)

	build, err := s.builds.FetchBuild(ctx, args.BuildHash)
	if err != nil {
		return errorResult("Failed to fetch build data: %v", err), nil
	}
	exp, err := experiments.Find(build.Experiments, args.Query, s.matcher)
	if errors.Is(err, experiments.ErrNotFound) {
		return &mcp.CallToolResultFor[any]{
			Content: []mcp.Content{&mcp.TextContent{Text: "No such experiment found."}},
		}, nil
	}
	if err != nil {
		return errorResult("Lookup failed: %v", err), nil
	}
	p, err := experiments.DetailPage(exp)
	if err != nil {
		return errorResult("Failed to render experiment: %v", err), nil
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: pageText(p)}},
		Meta: map[string]interface{}{
			"build_hash": build.BuildHash,
			"id":         exp.ID,
			"page":       p.Unpack(),
		},
	}, nil
}

func (s *ExperimentsMCPServer) Page(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[PageParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	logrus.Infof("MCP experiment_page page=%d build=%q", args.Page, args.BuildHash)

	build, err := s.builds.FetchBuild(ctx, args.BuildHash)
	if err != nil {
		return errorResult("Failed to fetch build data: %v", err), nil
	}
	n := args.Page
	if pages := (len(build.Experiments) + experiments.PageSize - 1) / experiments.PageSize; n > pages {
		n = pages
	}
	if n < 1 {
		n = 1
	}
	ctrl := experiments.NewBrowser(build.Experiments, paging.WithStart((n-1)*experiments.PageSize))
	upd, err := ctrl.Current()
	if err != nil {
		return errorResult("Failed to render page: %v", err), nil
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: pageText(upd.Page)}},
		Meta: map[string]interface{}{
			"build_hash":  build.BuildHash,
			"page":        ctrl.Dataset().PageNumber(),
			"pages":       ctrl.Dataset().PageCount(),
			"has_prev":    upd.Controls.CanRetreat,
			"has_next":    upd.Controls.CanAdvance,
			"page_fields": upd.Page.Unpack(),
		},
	}, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logrus.Warnf(".env file not found: %v", err)
	}
	cfg := config.New()

	source := buildsource.New(cfg.BuildsAPIURL, cfg.HTTPTimeout, buildcache.NewMemory(cfg.BuildCacheTTL))
	srv := NewExperimentsMCPServer(source)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "experiment-bot-mcp",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "experiment_lookup",
		Description: "Finds one experiment of a build by fuzzy name or ID and returns its treatments",
	}, srv.Lookup)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "experiment_page",
		Description: "Returns one page of the build's experiment list, most recent first",
	}, srv.Page)

	logrus.Infof("starting experiments MCP server on stdin/stdout")
	if err := server.Run(context.Background(), mcp.NewStdioTransport()); err != nil {
		logrus.Fatalf("experiments MCP server failed: %v", err)
	}
}
