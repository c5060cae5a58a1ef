package notify

import "html/template"

const detailsBlock = `
<div style="background-color: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0;">
  <h3 style="margin-top: 0;">Afspraakdetails:</h3>
  <p><strong>Datum:</strong> {{.Date}}</p>
  <p><strong>Tijd:</strong> {{.Time}}</p>
  <p><strong>Service:</strong> {{.Service}}</p>
</div>`

const signOff = `
<p>Tot ziens!</p>
<p>Met vriendelijke groet,<br>Je kapper</p>`

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Hallo {{.Name}},</h2>
  <p>Bedankt voor je boeking!</p>` + detailsBlock + signOff + `
</div>`))

var reminderTmpl = template.Must(template.New("reminder").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Hallo {{.Name}},</h2>
  <p>Herinnering voor je afspraak morgen.</p>` + detailsBlock + signOff + `
</div>`))

var rescheduleTmpl = template.Must(template.New("reschedule").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Beste {{.Name}},</h2>
  <p>Je afspraak is verzet naar een nieuwe datum en tijd.</p>
  <div style="background-color: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="margin-top: 0; color: #666;">Oude afspraak:</h3>
    <p><strong>Datum:</strong> {{.OldDate}}</p>
    <p><strong>Tijd:</strong> {{.OldTime}}</p>
    <h3 style="margin-top: 20px; color: #666;">Nieuwe afspraak:</h3>
    <p><strong>Datum:</strong> {{.Date}}</p>
    <p><strong>Tijd:</strong> {{.Time}}</p>
    <p><strong>Service:</strong> {{.Service}}</p>
  </div>` + signOff + `
</div>`))

var cancellationTmpl = template.Must(template.New("cancellation").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Beste {{.Name}},</h2>
  <p>Je afspraak is geannuleerd.</p>` + detailsBlock + signOff + `
</div>`))
