package cel

// ScreeningExamples are sample rules for the screening section of the config.
var ScreeningExamples = map[string]string{
	"has_phone":        `phone != ""`,
	"has_organization": `organization != ""`,
	"link_in_message":  `message.contains("http://") || message.contains("https://")`,
	"free_mail":        `email.endsWith("@gmail.com") || email.endsWith("@yahoo.com")`,
	"long_message":     `size(message) > 1000`,
	"shouting":         `size(message) > 20 && message == message.upperAscii()`,
	"enterprise_hint":  `message.lowerAscii().contains("enterprise")`,
}
