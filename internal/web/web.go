// Package web embeds the practice-preview page.
package web

// IndexHTML is the single-page player served at the preview root.
var IndexHTML = []byte(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>drumtrainer practice</title>
<style>
  body { font-family: system-ui, sans-serif; background: #14141c; color: #e8e8f0;
         display: flex; flex-direction: column; align-items: center; padding-top: 4rem; }
  h1 { font-weight: 300; letter-spacing: 0.2em; }
  audio { margin-top: 2rem; width: 20rem; }
  #status { margin-top: 1.5rem; color: #9a9ab0; font-size: 0.9rem; }
</style>
</head>
<body>
<h1>drumtrainer</h1>
<audio controls src="/stream"></audio>
<div id="status">loading…</div>
<script>
const fmt = s => {
  const m = Math.floor(s / 60), r = Math.floor(s % 60);
  return m + ":" + String(r).padStart(2, "0");
};
async function poll() {
  try {
    const res = await fetch("/api/status");
    const st = await res.json();
    document.getElementById("status").textContent =
      fmt(st.position) + " / " + fmt(st.duration) + " — " + st.listeners + " listening";
  } catch (e) {
    document.getElementById("status").textContent = "offline";
  }
}
poll();
setInterval(poll, 1000);
</script>
</body>
</html>
`)
