package http

import "html/template"

const indexTemplateName = "index"

// indexTemplate lists local files; backed-up ones are highlighted. Clicking
// a row posts its name to /upload and reloads the page on success.
var indexTemplate = template.Must(template.New(indexTemplateName).Parse(`<!DOCTYPE html>
<html>
	<head>
		<meta charset="utf-8">
		<title>Backup</title>
	</head>
	<body>
		{{- if .Degraded}}
		<p class="degraded">Remote folder could not be listed; backup state is unknown.</p>
		{{- end}}
		<ul>
			{{- range .Files}}
			<li data-name="{{.Name}}" onclick="upload(this)"{{if .Uploaded}} class="uploaded" style="background-color: rgba(0, 200, 0, 0.25);"{{end}}>{{.Name}}</li>
			{{- end}}
		</ul>
		<script>
			function upload(el) {
				fetch('/upload', {method: 'POST', body: el.dataset.name})
					.then(function (resp) { if (resp.ok) { location.reload(); } });
			}
		</script>
	</body>
</html>
`))
