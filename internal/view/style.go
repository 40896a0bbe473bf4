package view

const stylesheet = `body{margin:0;font-family:system-ui,sans-serif;background:#f4f5f7;color:#1f2933}
nav{display:flex;gap:1rem;padding:1rem 2rem;background:#1f2933}
nav a{color:#fff;text-decoration:none}
main{max-width:72rem;margin:2rem auto;padding:0 1rem}
.card{background:#fff;border-radius:.5rem;padding:2rem;box-shadow:0 1px 3px rgba(0,0,0,.1)}
.btn{border:0;border-radius:.375rem;padding:.5rem 1rem;margin-right:.5rem;cursor:pointer;text-decoration:none;display:inline-block}
.btn-primary{background:#2563eb;color:#fff}
.btn-secondary{background:#6b7280;color:#fff}
.btn-danger{background:#dc2626;color:#fff}
.alert{padding:1rem;border-radius:.5rem;margin-bottom:1.5rem}
.alert-error{background:#fee2e2;color:#b91c1c}
.alert-success{background:#dcfce7;color:#15803d}
.inline-form{display:inline;margin-left:1rem}
table{width:100%;border-collapse:collapse}
th,td{text-align:left;padding:.75rem;vertical-align:top}
tbody tr:nth-child(odd){background:#f9fafb}
th.sortable{cursor:pointer;user-select:none}
.modal-overlay{position:fixed;inset:0;background:rgba(0,0,0,.5);display:flex;align-items:center;justify-content:center}
.modal-content{background:#fff;border-radius:.5rem;padding:2rem;min-width:24rem;position:relative}
.modal-close-btn{position:absolute;top:1rem;right:1rem;background:none;border:0;font-size:1.5rem;cursor:pointer}
.form-group{display:flex;flex-direction:column;margin-bottom:1rem}
.form-input-error{border-color:#dc2626}
.form-error{color:#dc2626;font-size:.875rem}
.form-required{color:#dc2626}
`
