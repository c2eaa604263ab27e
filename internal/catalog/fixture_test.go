package catalog

const fixture = `<!DOCTYPE html>
<html>
<body>
  <main>
    <aside class="sidebar">
      <div id="lists">
        <section class="category" data-category="Guides">
          <h2>Guides</h2>
          <ul class="files">
            <li class="file" data-path="./setup.md" data-pdf="./setup.pdf">
              <div class="meta">
                <div class="title"><a href="#" class="file-link">Setup &amp; Install</a></div>
                <div class="desc">How to install</div>
                <div class="tags small-muted">MD · Guides</div>
              </div>
            </li>
          </ul>
        </section>
        <section class="category" data-category="Reference">
          <h2>Reference</h2>
          <ul class="files">
            <li class="file" data-path="./api.pdf" data-pdf="./api.pdf"><div class="meta"><div class="title"><a href="#" class="file-link">API</a></div><div class="tags small-muted">PDF · Reference</div></div></li>
          </ul>
        </section>
        <section class="category" data-category="guides">
          <h2>  guides </h2>
          <ul class="files">
            <li class="file" data-path="./setup.md"><div class="meta"><div class="title"><a href="#" class="file-link">Setup dup</a></div></div></li>
            <li class="file" data-path="./faq.md"><div class="meta"><div class="title"><a href="#" class="file-link">FAQ</a></div></div></li>
          </ul>
        </section>
      </div>
    </aside>
  </main>
</body>
</html>
`
