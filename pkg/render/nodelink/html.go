package nodelink

import (
	"bytes"
	"html/template"

	"github.com/matzehuels/smdgraph/pkg/errors"
	"github.com/matzehuels/smdgraph/pkg/kg"
	"github.com/matzehuels/smdgraph/pkg/render/style"
)

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <style>
    body { margin: 0; font-family: Arial, sans-serif; color: #1F2937; background: #ffffff; }
    header { padding: 12px 16px; border-bottom: 1px solid #E5E7EB; }
    h1 { font-size: 16px; margin: 0 0 6px 0; }
    .legend span { display: inline-block; margin-right: 14px; font-size: 12px; }
    .legend i { display: inline-block; width: 10px; height: 10px; border-radius: 50%; margin-right: 4px; }
    main svg { width: 100%; height: auto; }
  </style>
</head>
<body>
  <header>
    <h1>{{.Title}}</h1>
    <div class="legend">{{range .Legend}}<span><i style="background: {{.Color}}"></i>{{.Name}}</span>{{end}}</div>
  </header>
  <main>{{.SVG}}</main>
</body>
</html>
`))

type legendEntry struct {
	Name  string
	Color template.CSS
}

// WrapHTML embeds an SVG produced by [RenderSVG] in a standalone page with a
// title and a node color legend.
func WrapHTML(svg []byte, title string, th *style.Theme) ([]byte, error) {
	if th == nil {
		th = style.Default()
	}
	var legend []legendEntry
	for _, k := range []kg.Kind{kg.KindSymptom, kg.KindMechanism, kg.KindDisease} {
		legend = append(legend, legendEntry{Name: k.String(), Color: template.CSS(th.NodeColor(k))})
	}

	var buf bytes.Buffer
	err := page.Execute(&buf, struct {
		Title  string
		Legend []legendEntry
		SVG    template.HTML
	}{title, legend, template.HTML(svg)})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render page")
	}
	return buf.Bytes(), nil
}
