// Package report renders deployment results as a standalone HTML page.
package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"fieldkit/internal/deploy"

	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"
)

// Meta describes the run a report belongs to.
type Meta struct {
	TargetOrg   string
	GeneratedAt time.Time
}

const pageCSS = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2328}
table{border-collapse:collapse;margin-bottom:1.5rem}
th,td{border:1px solid #d0d7de;padding:.35rem .75rem;text-align:left}
.ok{color:#1a7f37}.fail{color:#cf222e}
pre{background:#f6f8fa;padding:1rem;white-space:pre-wrap}`

// Render writes res as an HTML document.
func Render(w io.Writer, res deploy.Result, meta Meta) error {
	return Page(res, meta).Render(w)
}

// Page builds the report document.
func Page(res deploy.Result, meta Meta) gomponents.Node {
	status := "Completed"
	statusClass := "ok"
	if res.IsError {
		status = "Completed with errors"
		statusClass = "fail"
	}

	return html.HTML(
		html.Lang("en"),
		html.Head(
			html.Meta(html.Charset("utf-8")),
			html.TitleEl(gomponents.Text("Field deployment | "+orgLabel(meta.TargetOrg))),
			html.StyleEl(gomponents.Raw(pageCSS)),
		),
		html.Body(
			html.H1(gomponents.Text("Field deployment")),
			html.P(
				gomponents.Text("Target org: "), html.Strong(gomponents.Text(orgLabel(meta.TargetOrg))),
				gomponents.If(!meta.GeneratedAt.IsZero(),
					gomponents.Text(" · "+meta.GeneratedAt.UTC().Format(time.RFC3339))),
			),
			html.P(html.Class(statusClass), gomponents.Text(status)),
			fieldsTable(res),
			grantsTable(res.Grants),
			html.H2(gomponents.Text("Report")),
			html.Pre(gomponents.Text(res.Report)),
		),
	)
}

func fieldsTable(res deploy.Result) gomponents.Node {
	if len(res.Created) == 0 && len(res.Failed) == 0 {
		return nil
	}
	rows := make([]gomponents.Node, 0, len(res.Created)+len(res.Failed))
	for _, name := range res.Created {
		rows = append(rows, html.Tr(
			html.Td(gomponents.Text(name)),
			html.Td(html.Class("ok"), gomponents.Text(deploy.SuccessMarker+" created")),
		))
	}
	for _, line := range res.Failed {
		name, msg, _ := strings.Cut(line, ": ")
		rows = append(rows, html.Tr(
			html.Td(gomponents.Text(name)),
			html.Td(html.Class("fail"), gomponents.Text(deploy.FailureMarker+" "+msg)),
		))
	}
	return gomponents.Group([]gomponents.Node{
		html.H2(gomponents.Text("Fields (" + strconv.Itoa(len(rows)) + ")")),
		html.Table(
			html.THead(html.Tr(html.Th(gomponents.Text("Field")), html.Th(gomponents.Text("Result")))),
			html.TBody(rows...),
		),
	})
}

func grantsTable(grants []deploy.GrantOutcome) gomponents.Node {
	if len(grants) == 0 {
		return nil
	}
	rows := make([]gomponents.Node, 0, len(grants))
	for _, g := range grants {
		result := html.Td(html.Class("fail"), gomponents.Text(deploy.FailureMarker+" "+g.Message))
		via := "-"
		if g.Success {
			result = html.Td(html.Class("ok"), gomponents.Text(deploy.SuccessMarker+" granted"))
			via = string(g.Kind)
		}
		rows = append(rows, html.Tr(
			html.Td(gomponents.Text(g.Grantee)),
			html.Td(gomponents.Text(via)),
			result,
		))
	}
	return gomponents.Group([]gomponents.Node{
		html.H2(gomponents.Text("Permission assignments")),
		html.Table(
			html.THead(html.Tr(
				html.Th(gomponents.Text("Grantee")),
				html.Th(gomponents.Text("Via")),
				html.Th(gomponents.Text("Result")),
			)),
			html.TBody(rows...),
		),
	})
}

func orgLabel(alias string) string {
	if alias == "" {
		return "(none)"
	}
	return alias
}
