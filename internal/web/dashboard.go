package web

// dashboardHTML is the embedded single-page dashboard. It polls the report
// endpoint and renders duplicate groups with thumbnails.
const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Image Duplicate Finder</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 0; background: #111; color: #eee; }
  header { padding: 16px 24px; background: #1b1b1b; display: flex; align-items: center; gap: 16px; }
  header h1 { font-size: 18px; margin: 0; flex: 1; }
  button { background: #2d6cdf; color: #fff; border: 0; border-radius: 6px; padding: 8px 14px; cursor: pointer; }
  button:hover { background: #3b7cf0; }
  main { padding: 24px; }
  .stats { display: flex; gap: 24px; margin-bottom: 24px; color: #aaa; }
  .group { background: #1b1b1b; border-radius: 8px; padding: 16px; margin-bottom: 16px; }
  .group h2 { font-size: 14px; margin: 0 0 12px; color: #9cf; }
  .files { display: flex; flex-wrap: wrap; gap: 12px; }
  .file { width: 180px; }
  .file img { width: 100%; border-radius: 4px; background: #000; }
  .file .name { font-size: 12px; word-break: break-all; margin-top: 4px; }
  .file .meta { font-size: 11px; color: #888; }
  .file .trash { margin-top: 4px; background: #b33; padding: 4px 8px; font-size: 11px; }
  progress { width: 240px; }
</style>
</head>
<body>
<header>
  <h1>🖼️ Image Duplicate Finder</h1>
  <progress id="progress" max="100" value="0" hidden></progress>
  <button onclick="runVisual()">Run visual analysis</button>
  <button onclick="runNames()">Run name analysis</button>
</header>
<main>
  <div class="stats" id="stats"></div>
  <div id="groups"></div>
</main>
<script>
async function refresh() {
  const res = await fetch('/api/report');
  const report = await res.json();

  const bar = document.getElementById('progress');
  const analyzing = report.status && report.status.startsWith('analyzing');
  bar.hidden = !analyzing;
  bar.value = report.progress || 0;

  document.getElementById('stats').innerHTML =
    '<span>Files: ' + report.total_files + '</span>' +
    '<span>Fingerprint: ' + report.algorithm + ' (' + report.bits + ' bits)</span>' +
    '<span>Duplicate groups: ' + (report.visual_groups ? report.visual_groups.length : 0) + '</span>' +
    '<span>Similar names: ' + (report.similar_pairs ? report.similar_pairs.length : 0) + '</span>' +
    '<span>Status: ' + report.status + '</span>';

  const groups = document.getElementById('groups');
  groups.innerHTML = '';
  (report.visual_groups || []).forEach(g => {
    const div = document.createElement('div');
    div.className = 'group';
    div.innerHTML = '<h2>' + g.base_name + ' · ' + g.files.length +
      ' files, max distance ' + g.max_distance + '</h2>';
    const files = document.createElement('div');
    files.className = 'files';
    g.files.forEach(f => {
      const card = document.createElement('div');
      card.className = 'file';
      card.innerHTML =
        '<img loading="lazy" src="/api/preview?path=' + encodeURIComponent(f.path) + '">' +
        '<div class="name">' + f.name + '</div>' +
        '<div class="meta">' + f.size + ' B · ' + (f.digest || '') + '</div>' +
        '<button class="trash" onclick="trash(\'' + encodeURIComponent(f.path) + '\')">Move to trash</button>';
      files.appendChild(card);
    });
    div.appendChild(files);
    groups.appendChild(div);
  });
}

async function runVisual() { await fetch('/api/run-visual', {method: 'POST'}); }
async function runNames() { await fetch('/api/run-names', {method: 'POST'}); }
async function trash(path) {
  await fetch('/api/trash?path=' + path, {method: 'POST'});
  refresh();
}

refresh();
setInterval(refresh, 2000);
</script>
</body>
</html>`
