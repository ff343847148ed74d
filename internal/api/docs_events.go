package api

const eventsDocsHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Event Feed - Tab Deduplicator</title>
  <style>
    body {
      margin: 0;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", sans-serif;
      font-size: 14px;
      line-height: 1.65;
      background: #0d1117;
      color: #c9d1d9;
    }
    a { color: #58a6ff; text-decoration: none; }
    nav {
      background: #161b22;
      border-bottom: 1px solid #30363d;
      padding: 0 24px;
      height: 48px;
      display: flex;
      align-items: center;
      gap: 24px;
    }
    nav .brand { font-weight: 600; font-size: 15px; color: #e6edf3; }
    main { max-width: 860px; margin: 0 auto; padding: 32px 16px 64px; }
    h1 { margin: 0 0 8px; font-size: 28px; font-weight: 600; color: #e6edf3; }
    h2 {
      margin: 40px 0 12px;
      font-size: 18px;
      font-weight: 600;
      color: #e6edf3;
      padding-bottom: 8px;
      border-bottom: 1px solid #21262d;
    }
    table { width: 100%; border-collapse: collapse; margin-bottom: 20px; font-size: 13px; }
    th { text-align: left; padding: 8px 12px; background: #161b22; color: #8b949e; border-bottom: 1px solid #30363d; }
    td { padding: 8px 12px; border-bottom: 1px solid #21262d; vertical-align: top; }
    code, pre {
      font-family: "SFMono-Regular", Consolas, "Liberation Mono", Menlo, monospace;
      font-size: 12px;
      background: #161b22;
      border: 1px solid #30363d;
      border-radius: 4px;
    }
    code { padding: 1px 5px; }
    pre { padding: 12px 16px; overflow-x: auto; }
    pre code { border: none; padding: 0; }
  </style>
</head>
<body>
  <nav>
    <span class="brand">Tab Deduplicator</span>
    <a href="/docs">&larr; API Reference</a>
  </nav>
  <main>
    <h1>Event Feed</h1>
    <p>
      <code>GET /api/v1/events</code> streams tab lifecycle and deduplication
      events as Server-Sent Events. The <code>event</code> field is the kind and
      <code>data</code> is a JSON object.
    </p>

    <h2>Kinds</h2>
    <table>
      <tr><th>kind</th><th>data</th></tr>
      <tr><td><code>tab.created</code></td><td><code>{"tab":{"id","url","title"}}</code></td></tr>
      <tr><td><code>tab.updated</code></td><td><code>{"tab":{...},"urlChanged":true,"status":"complete"}</code></td></tr>
      <tr><td><code>tab.removed</code></td><td><code>{"tab":{...}}</code></td></tr>
      <tr><td><code>duplicate.closed</code></td><td>closure record: <code>id, at, reason, tabId, url, title, keptTabId, normalizedUrl</code></td></tr>
      <tr><td><code>settings.updated</code></td><td>the new settings object</td></tr>
    </table>

    <h2>Filtering</h2>
    <p>Pass <code>?kinds=</code> with a comma-separated list to receive only those kinds.</p>
    <pre><code>curl -N http://127.0.0.1:8191/api/v1/events
curl -N 'http://127.0.0.1:8191/api/v1/events?kinds=duplicate.closed,settings.updated'</code></pre>

    <h2>Delivery</h2>
    <p>
      Each subscriber has a bounded buffer. Events are dropped for clients that
      fall behind; the feed is a live view, not a log. Closed tabs are also
      written to the closure journal when it is enabled.
    </p>
  </main>
</body>
</html>`
