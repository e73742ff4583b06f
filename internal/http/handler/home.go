package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Home serves the built-in viewer. It subscribes repos, clears state and
// refreshes the event feed every 5 seconds against the JSON endpoints.
func Home(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(viewerPage))
}

const viewerPage = `<!DOCTYPE html>
<html>
  <head>
    <title>repowatch</title>
    <meta charset="UTF-8" />
    <style>
      body { font-family: monospace; padding: 20px; background: #111; color: #0f0; }
      pre { white-space: pre-wrap; word-wrap: break-word; }
      input, button { padding: 6px 10px; margin-right: 4px; font-family: monospace; }
      input { width: 350px; }
      button { background: #0f0; color: #111; border: none; cursor: pointer; }
      hr { margin: 20px 0; border: 1px solid #0f0; }
    </style>
  </head>
  <body>
    <h2>repowatch</h2>
    <div>
      <input type="text" id="repoInput" placeholder="https://github.com/user/repo" />
      <button onclick="subscribeRepo()">Subscribe</button>
      <button onclick="clearEvents()">Clear</button>
    </div>
    <hr>
    <pre id="events">Loading...</pre>
    <script>
      async function subscribeRepo() {
        const url = document.getElementById('repoInput').value.trim();
        if (!url) return alert('Enter a GitHub repo URL');
        const res = await fetch('/subscribe', {
          method: 'POST',
          headers: { 'Content-Type': 'application/json' },
          body: JSON.stringify({ repoUrl: url })
        });
        const data = await res.json();
        alert(data.repo ? ('Subscribed: ' + data.repo + ' (' + data.status + ')') : data.error);
      }

      async function loadEvents() {
        const res = await fetch('/inspect');
        const data = await res.json();
        const lines = data.data.map(e => {
          let info = '[' + e.recorded_at + '] ' + e.repo + ' | ' + e.type + ' by ' + e.actor;
          if (e.details && Object.keys(e.details).length)
            info += "\n   " + JSON.stringify(e.details, null, 2);
          return info;
        }).join('\n\n');
        document.getElementById('events').innerText = lines || "No events yet.";
      }

      async function clearEvents() {
        await fetch('/clear', { method: 'DELETE' });
        document.getElementById('events').innerText = "Cleared.";
      }

      setInterval(loadEvents, 5000);
      loadEvents();
    </script>
  </body>
</html>
`
