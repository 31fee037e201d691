package main

import "html/template"

// Templates are compiled in so the binary runs from any directory.

const baseTemplate = `{{define "base"}}<!DOCTYPE html>
<html>
<head>
<title>Flashcard Tutor</title>
<style>
body { font-family: sans-serif; max-width: 860px; margin: 2em auto; padding: 0 1em; color: #222; }
nav a { margin-right: 1.2em; }
.error { background: #fde8e8; border: 1px solid #c33; padding: 0.6em 1em; margin: 1em 0; }
.status { background: #e8f5e9; border: 1px solid #3a3; padding: 0.6em 1em; margin: 1em 0; }
table { border-collapse: collapse; width: 100%; margin-top: 1em; }
th, td { border: 1px solid #ccc; padding: 0.4em 0.6em; text-align: left; vertical-align: top; }
textarea { width: 100%; }
.card { border: 1px solid #ccc; padding: 1.2em; margin: 1em 0; }
.answer { background: #fffde7; padding: 0.8em; margin-top: 0.8em; }
button { padding: 0.4em 1em; margin-right: 0.5em; }
</style>
</head>
<body>
<nav><a href="/">Generate</a><a href="/quiz">Quiz</a><a href="/results">History</a></nav>
<h1>Flashcard Tutor</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{if .Status}}<p class="status">{{.Status}}</p>{{end}}
{{template "content" .}}
</body>
</html>{{end}}`

const homeTemplate = `{{define "content"}}
<h2>Study Material</h2>
<form method="POST" action="/generate">
<textarea name="source" rows="14" placeholder="Paste your notes, textbook excerpt, or lecture transcript here..."></textarea>
<p>
Cards: <input type="number" name="count" value="{{.Config.CardCount}}" min="1" max="30">
Style: <select name="style">{{range .Styles}}<option value="{{.}}">{{.}}</option>{{end}}</select>
Difficulty: <select name="difficulty">{{range .Difficulty}}<option value="{{.}}" {{if eq . $.Config.Difficulty}}selected{{end}}>{{.}}</option>{{end}}</select>
<label><input type="checkbox" name="use_llm" {{if .Config.UseLLM}}checked{{end}}> Use LLM</label>
</p>
<button type="submit">Generate Flashcards</button>
</form>
{{if .HasDeck}}
<h2>Generated Flashcards</h2>
<table>
<tr><th>#</th><th>Style</th><th>Difficulty</th><th>Question</th><th>Answer</th></tr>
{{range $i, $c := .Deck}}
<tr><td>{{add $i 1}}</td><td>{{$c.Style}}</td><td>{{$c.Difficulty}}</td><td>{{$c.Question}}</td><td>{{$c.Answer}}</td></tr>
{{end}}
</table>
{{end}}
{{end}}`

const quizTemplate = `{{define "content"}}
<h2>Quiz</h2>
<form method="POST" action="/quiz/start"><button type="submit">Start / Restart Quiz</button></form>
{{if eq .Snapshot.Phase "in_progress"}}
<p>Question {{add .Snapshot.Position 1}} / {{.Snapshot.Total}}
&nbsp; Correct: {{.Snapshot.Correct}} &nbsp; Incorrect: {{.Snapshot.Incorrect}}
&nbsp; Accuracy: {{printf "%.1f" (pct .Snapshot.Accuracy)}}%</p>
<div class="card">
<p><strong>{{.Snapshot.Question}}</strong></p>
{{if .Snapshot.Revealed}}
<p class="answer">{{.Snapshot.Answer}}</p>
{{if .Snapshot.Marked}}
<form method="POST" action="/quiz/next"><button type="submit">Next Question</button></form>
{{else}}
<form method="POST" action="/quiz/mark" style="display:inline"><input type="hidden" name="correct" value="1"><button type="submit">I was right</button></form>
<form method="POST" action="/quiz/mark" style="display:inline"><input type="hidden" name="correct" value="0"><button type="submit">I was wrong</button></form>
{{end}}
{{else}}
<form method="POST" action="/quiz/reveal"><button type="submit">Reveal Answer</button></form>
{{end}}
</div>
{{else if eq .Snapshot.Phase "finished"}}
<p class="status">Quiz finished! Correct: {{.Snapshot.Correct}}, incorrect: {{.Snapshot.Incorrect}},
accuracy {{printf "%.1f" (pct .Snapshot.Accuracy)}}%. The result was saved to your history.</p>
{{else if not .HasDeck}}
<p>No flashcards yet. <a href="/">Generate a deck first.</a></p>
{{end}}
{{end}}`

const resultsTemplate = `{{define "content"}}
<h2>Quiz History</h2>
{{if .Results}}
<table>
<tr><th>Taken</th><th>Mode</th><th>Style</th><th>Difficulty</th><th>Score</th><th>Accuracy</th></tr>
{{range .Results}}
<tr><td>{{.TakenAt.Format "2006-01-02 15:04"}}</td><td>{{.Mode}}</td><td>{{.Style}}</td><td>{{.Difficulty}}</td>
<td>{{.Correct}}/{{.CardCount}}</td><td>{{printf "%.1f" (pct .Accuracy)}}%</td></tr>
{{end}}
</table>
{{else}}
<p>No quiz results yet. Finish a quiz to see it here.</p>
{{end}}
{{end}}`

func loadTemplates() map[string]*template.Template {
	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"pct": func(f float64) float64 { return f * 100 },
	}

	pages := map[string]string{
		"home":    homeTemplate,
		"quiz":    quizTemplate,
		"results": resultsTemplate,
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, page := range pages {
		templates[name] = template.Must(
			template.New(name).Funcs(funcMap).Parse(baseTemplate + page))
	}
	return templates
}
