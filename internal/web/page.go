package web

import "html/template"

var pageTmpl = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="en"><head>
<meta charset="utf-8"><meta name="viewport" content="width=device-width,initial-scale=1"/>
<title>InScraper</title>
<link rel="icon" href="data:,">
<script src="https://cdn.tailwindcss.com"></script>
<script>
tailwind.config = { theme: { extend: {
  colors:{ primary:{DEFAULT:'hsl(200 98% 39%)', glow:'hsl(200 100% 50%)'} },
  boxShadow:{ card:'0 2px 10px -1px rgba(18,38,63,.12)' }
}}}
</script>
<style>
.gradient-text{background:linear-gradient(135deg,hsl(200 98% 39%),hsl(200 100% 50%));-webkit-background-clip:text;background-clip:text;color:transparent}
.table-wrap{max-height:420px;overflow:auto} th,td{white-space:nowrap}
</style>
</head>
<body class="bg-gray-50 text-gray-900">
<div class="max-w-7xl mx-auto px-4 py-8">
  <header class="text-center mb-8">
    <h1 class="text-3xl font-bold gradient-text">InScraper</h1>
    <p class="text-sm text-gray-500 mt-1">Log in once from the terminal (<code>inscraper &lt;url&gt;</code>) before running from here.</p>
  </header>

  <div class="bg-white border rounded-xl shadow-card p-5 mb-6">
    <label class="block">
      <span class="text-sm">Company People page</span>
      <input id="url" type="url" class="mt-1 w-full border rounded-md px-3 py-2 focus:ring-2 focus:ring-primary" placeholder="https://www.linkedin.com/company/<name>/people/">
    </label>
    <button id="runBtn" class="mt-4 w-full py-2 rounded-lg bg-primary text-white font-medium hover:opacity-90">Run</button>
  </div>

  <div class="bg-white border rounded-xl shadow-card p-5 mb-6">
    <div class="flex items-center justify-between mb-3">
      <h2 class="text-lg font-semibold">Logs</h2>
      <span id="statusBadge" class="text-xs px-2 py-1 rounded-full bg-gray-100 text-gray-600">Idle</span>
    </div>
    <div id="logBox" class="border rounded-md bg-gray-50 h-64 overflow-y-auto p-3 text-xs font-mono text-gray-800">Waiting for logs…</div>
    <div class="flex items-center justify-between mt-3">
      <div class="text-xs text-gray-500"><span id="startedAt">—</span> • <span id="endedAt">—</span></div>
      <a id="csvLink" href="/download" class="hidden text-sm px-3 py-1 rounded-md border hover:bg-gray-100">Download CSV</a>
    </div>
  </div>

  <div class="bg-white border rounded-xl shadow-card p-5">
    <div class="flex items-center justify-between mb-3">
      <h2 class="text-lg font-semibold">Results</h2>
      <span id="resultsBadge" class="text-xs px-2 py-1 rounded-full bg-gray-100 text-gray-600">0 rows</span>
    </div>
    <div id="noResults" class="text-sm text-gray-500">No results yet.</div>
    <div id="resultsWrap" class="table-wrap hidden border rounded-md">
      <table class="min-w-full divide-y divide-gray-200 text-sm">
        <thead class="bg-gray-50"><tr>
          <th class="px-3 py-2 text-left font-medium text-gray-700">Name</th>
          <th class="px-3 py-2 text-left font-medium text-gray-700">Description</th>
          <th class="px-3 py-2 text-left font-medium text-gray-700">Link</th>
        </tr></thead>
        <tbody id="resultsBody" class="divide-y divide-gray-200"></tbody>
      </table>
    </div>
  </div>
</div>

<script>
(function () {
  const $ = (id) => document.getElementById(id);
  const runBtn = $('runBtn'), logBox = $('logBox'), statusBadge = $('statusBadge');

  function appendLog(line) {
    if (logBox.textContent.trim() === 'Waiting for logs…') logBox.textContent = '';
    const p = document.createElement('div');
    p.textContent = line;
    logBox.appendChild(p);
    logBox.scrollTop = logBox.scrollHeight;
  }

  function setStatus(txt, color) {
    statusBadge.textContent = txt;
    statusBadge.className = 'text-xs px-2 py-1 rounded-full ' + color;
  }

  function escapeHTML(s){return (s||'').replace(/[&<>"']/g,m=>({'&':'&amp;','<':'&lt;','>':'&gt;','"':'&quot;',"'":'&#39;'}[m]));}

  function renderResults(rows) {
    $('resultsBody').innerHTML = '';
    const empty = !rows || !rows.length;
    $('noResults').classList.toggle('hidden', !empty);
    $('resultsWrap').classList.toggle('hidden', empty);
    $('resultsBadge').textContent = (empty ? 0 : rows.length) + ' rows';
    if (empty) return;
    for (const r of rows) {
      const tr = document.createElement('tr');
      tr.innerHTML =
        '<td class="px-3 py-2">'+escapeHTML(r.name)+'</td>'+
        '<td class="px-3 py-2">'+escapeHTML(r.description)+'</td>'+
        '<td class="px-3 py-2"><a href="'+encodeURI(r.link||'#')+'" target="_blank" class="text-primary underline">open</a></td>';
      $('resultsBody').appendChild(tr);
    }
  }

  runBtn.addEventListener('click', async () => {
    $('csvLink').classList.add('hidden');
    $('startedAt').textContent = new Date().toLocaleTimeString();
    $('endedAt').textContent = '—';
    logBox.textContent = 'Waiting for logs…';
    renderResults([]);
    setStatus('Running', 'bg-primary/10 text-primary');
    runBtn.disabled = true;

    let finalData = null;
    try {
      const resp = await fetch('/run', {
        method: 'POST',
        headers: {'Content-Type':'application/json'},
        body: JSON.stringify({url: $('url').value.trim()})
      });
      if (!resp.ok) {
        setStatus('HTTP error', 'bg-red-100 text-red-700');
        appendLog('Error: ' + resp.status + ' ' + resp.statusText);
        return;
      }
      const reader = resp.body.getReader();
      const decoder = new TextDecoder();
      let buffer = '';
      while (true) {
        const {value, done} = await reader.read();
        if (done) break;
        buffer += decoder.decode(value, {stream:true});
        const parts = buffer.split('\n');
        buffer = parts.pop();
        for (const line of parts) {
          if (!line) continue;
          try {
            const ev = JSON.parse(line);
            if (ev.type === 'log') appendLog(ev.msg);
            else if (ev.type === 'done') finalData = ev.data;
          } catch { appendLog(line); }
        }
      }
    } finally {
      runBtn.disabled = false;
      $('endedAt').textContent = new Date().toLocaleTimeString();
    }

    if (!finalData) {
      setStatus('Failed', 'bg-red-100 text-red-700');
      return;
    }
    if (finalData.output_path) $('csvLink').classList.remove('hidden');
    renderResults(finalData.results);
    if (finalData.ok) setStatus('Done', 'bg-green-100 text-green-700');
    else setStatus('Finished with errors', 'bg-yellow-100 text-yellow-700');
  });
})();
</script>
</body></html>`))
