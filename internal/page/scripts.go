package page

import (
	"encoding/json"
	"fmt"

	"github.com/frudas24/touchrelay/internal/geom"
)

const (
	cursorID       = "touchrelay-cursor"
	highlightClass = "touchrelay-highlight"
)

const readyScript = `!!(document.head && document.body)`

const viewportScript = `({w: window.innerWidth, h: window.innerHeight})`

const textNodesScript = `(() => {
  const out = [];
  const walker = document.createTreeWalker(document.body, NodeFilter.SHOW_TEXT);
  const range = document.createRange();
  for (let n = walker.nextNode(); n; n = walker.nextNode()) {
    const text = n.textContent.trim();
    if (!text) continue;
    range.selectNodeContents(n);
    const rects = Array.from(range.getClientRects(), r => ({x: r.left, y: r.top, w: r.width, h: r.height}));
    out.push({text, rects});
  }
  return out;
})()`

// quote renders s as a JavaScript string literal.
func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// cursorScript places the cursor dot at p, creating it on first use.
func cursorScript(p geom.Point, size float64) string {
	return fmt.Sprintf(`(() => {
  let c = document.getElementById(%s);
  if (!c) {
    c = document.createElement("div");
    c.id = %s;
    c.style.cssText = "position:fixed;width:%gpx;height:%gpx;border-radius:50%%;background:red;pointer-events:none;z-index:2147483647;";
    document.body.appendChild(c);
  }
  c.style.left = "%gpx";
  c.style.top = "%gpx";
})()`, quote(cursorID), quote(cursorID), size, size, p.X, p.Y)
}

// elementAtScript describes the topmost element at p, or null.
func elementAtScript(p geom.Point) string {
	return fmt.Sprintf(`(() => {
  const el = document.elementFromPoint(%g, %g);
  if (!el) return null;
  const r = el.getBoundingClientRect();
  return {
    tag: el.tagName.toLowerCase(),
    hasOnclick: typeof el.onclick === "function" || el.hasAttribute("onclick"),
    cursor: getComputedStyle(el).cursor,
    rect: {x: r.left, y: r.top, w: r.width, h: r.height},
  };
})()`, p.X, p.Y)
}

// showHighlightScript replaces any previous overlay with one covering r.
func showHighlightScript(id string, r geom.Rect) string {
	return fmt.Sprintf(`(() => {
  document.querySelectorAll("."+%s).forEach(e => e.remove());
  const h = document.createElement("div");
  h.id = %s;
  h.className = %s;
  h.style.cssText = "position:fixed;left:%gpx;top:%gpx;width:%gpx;height:%gpx;background:rgba(0,120,215,0.3);pointer-events:none;z-index:2147483646;";
  document.body.appendChild(h);
})()`, quote(highlightClass), quote(id), quote(highlightClass), r.X, r.Y, r.W, r.H)
}

// hideHighlightScript removes the overlay with the given id if it still exists.
func hideHighlightScript(id string) string {
	return fmt.Sprintf(`(() => { const h = document.getElementById(%s); if (h) h.remove(); })()`, quote(id))
}

// scrollScript smooth-scrolls the window to top.
func scrollScript(top float64) string {
	return fmt.Sprintf(`window.scrollTo({top: %g, behavior: "smooth"})`, top)
}
