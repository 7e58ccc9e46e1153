package report

import "html/template"

var reportTemplate = template.Must(template.New("executive_summary").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 1200px;
            margin: 0 auto;
            padding: 20px;
        }
        .header {
            text-align: center;
            margin-bottom: 30px;
            padding-bottom: 20px;
            border-bottom: 1px solid #ddd;
        }
        h1 {
            color: #2c3e50;
            margin-bottom: 10px;
        }
        h2 {
            color: #3498db;
            margin-top: 30px;
            margin-bottom: 15px;
            padding-bottom: 5px;
            border-bottom: 1px solid #eee;
        }
        h3 {
            color: #2c3e50;
        }
        .date {
            color: #7f8c8d;
            font-style: italic;
        }
        .executive-summary {
            background-color: #f9f9f9;
            padding: 20px;
            border-left: 4px solid #3498db;
            margin-bottom: 30px;
        }
        .key-section {
            background-color: #f5f5f5;
            padding: 15px;
            margin-bottom: 20px;
            border-radius: 5px;
        }
        .recommendations {
            background-color: #e8f4fc;
            padding: 15px;
            margin-bottom: 20px;
            border-radius: 5px;
        }
        .actor {
            margin-bottom: 15px;
            padding-bottom: 15px;
            border-bottom: 1px dotted #ddd;
        }
        .ioc {
            font-family: monospace;
            background-color: #f0f0f0;
            padding: 2px 5px;
            border-radius: 3px;
        }
        .article {
            margin-bottom: 30px;
            padding-bottom: 20px;
            border-bottom: 1px solid #eee;
        }
        .article-source {
            color: #7f8c8d;
            font-size: 0.9em;
        }
        .article-summary {
            margin-top: 10px;
            white-space: pre-wrap;
        }
        table {
            width: 100%;
            border-collapse: collapse;
            margin-bottom: 20px;
        }
        table, th, td {
            border: 1px solid #ddd;
        }
        th, td {
            padding: 12px;
            text-align: left;
        }
        th {
            background-color: #f2f2f2;
        }
        tr:nth-child(even) {
            background-color: #f9f9f9;
        }
        .footer {
            margin-top: 40px;
            padding-top: 20px;
            border-top: 1px solid #ddd;
            font-size: 0.9em;
            color: #7f8c8d;
            text-align: center;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.Title}}</h1>
        <p class="date">Generated on {{.Date}}</p>
    </div>

    <div class="executive-summary">
        <h2>Executive Summary</h2>
        {{range .SummaryParas}}<p>{{.}}</p>
        {{end}}
    </div>

    <div class="key-section">
        <h2>Key Threat Actors</h2>
        {{range .Summary.KeyActors}}
        <div class="actor">
            <h3>{{.Name}}</h3>
            <p>{{.Description}}</p>
        </div>
        {{else}}
        <p>No key threat actors identified in this reporting period.</p>
        {{end}}
    </div>

    <div class="key-section">
        <h2>Critical Indicators of Compromise</h2>
        {{if .Summary.CriticalIOCs}}
        <table>
            <tr>
                <th>Type</th>
                <th>Value</th>
                <th>Description</th>
            </tr>
            {{range .Summary.CriticalIOCs}}
            <tr>
                <td>{{.Type}}</td>
                <td class="ioc">{{.Value}}</td>
                <td>{{.Description}}</td>
            </tr>
            {{end}}
        </table>
        {{else}}
        <p>No critical IOCs identified in this reporting period.</p>
        {{end}}
    </div>

    <div class="recommendations">
        <h2>Strategic Recommendations</h2>
        {{if .Summary.Recommendations}}
        <ol>
            {{range .Summary.Recommendations}}<li>{{.}}</li>
            {{end}}
        </ol>
        {{else}}
        <p>No strategic recommendations for this reporting period.</p>
        {{end}}
    </div>

    <h2>Recent Threat Intelligence</h2>
    {{range .Articles}}
    <div class="article">
        <h3><a href="{{.URL}}">{{.Title}}</a></h3>
        <p class="article-source">Source: {{.Source}} | {{.PublishedDate}}</p>
        <div class="article-summary">{{.Summary}}</div>
    </div>
    {{else}}
    <p>No recent articles available.</p>
    {{end}}

    <div class="footer">
        <p>This report was automatically generated by PRISM - Predictive Reconnaissance &amp; Intelligence Security Monitoring.</p>
        <p>Confidential - For internal use only</p>
    </div>
</body>
</html>
`))
