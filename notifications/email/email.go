package email

import (
	"fmt"
	"net/smtp"
)

// smtpServer holds the address of the SMTP server which is used to send emails.
var smtpServer string

// auth holds the smtp.Auth credentials needed to connect to the SMTP server.
var auth smtp.Auth

// fromEmail is the email address of the sender, used as the "From" address in all outbound mail.
var fromEmail string

// InitEmailService initializes the email service by establishing an SMTP
// connection to the configured mail server.
//
// It accepts two arguments:
// - sender: The email address used as the "From" address in outbound mail.
// - password: The password of the sender's email account.
//
// It sets the SMTP server address and credentials, then dials the server
// once to verify the connection. It returns false and the error if the
// server cannot be reached; callers may continue without email delivery.
func InitEmailService(sender, password string) (bool, error) {
	smtpServer = "smtp.gmail.com:587"
	fromEmail = sender

	auth = smtp.PlainAuth(
		"",
		sender,
		password,
		"smtp.gmail.com",
	)

	c, err := smtp.Dial(smtpServer)
	if err != nil {
		return false, fmt.Errorf("cannot connect to the SMTP server: %v", err)
	}

	err = c.Close()
	if err != nil {
		return false, fmt.Errorf("cannot close the SMTP connection: %v", err)
	}

	return true, nil
}

// Send sends an HTML email with the given subject and body fragment to the
// recipient. The body is wrapped in the standard notification template.
// The function returns an error if there was a problem with any step of the process.
func Send(to, subject, body string) error {
	headers := make(map[string]string)
	headers["From"] = fromEmail
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=\"UTF-8\""

	message := ""
	for k, v := range headers {
		message += fmt.Sprintf("%s: %s\r\n", k, v)
	}

	html := `
	<html>
		<head>
			<style>
				body {
					font-family: 'Lato', sans-serif;
					margin: 0;
					padding: 0;
				}
				.container {
					max-width: 600px;
					margin: 0 auto;
					padding: 10px;
					border-radius: 4px;
				}
				p {
					line-height: 1.6;
				}
			</style>
		</head>
		<body>
			<div class="container">
				<h1>Hello,</h1>
				<p>` + body + `</p>
			</div>
		</body>
	</html>
	`
	message += "\r\n" + html

	err := smtp.SendMail(
		smtpServer,
		auth,
		fromEmail,
		[]string{to},
		[]byte(message),
	)

	if err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}

	return nil
}
