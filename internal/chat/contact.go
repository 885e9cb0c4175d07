package chat

import "strings"

// ContactMarker is the structural marker the widget's contact form embeds in
// a message. Messages containing it are handled without a model call.
const ContactMarker = "Contact Information:"

// ContactInfo is a partial visitor contact record. Either field may be empty.
type ContactInfo struct {
	Name  string
	Email string
}

// IsContactMessage reports whether the message carries the contact marker.
func IsContactMessage(message string) bool {
	return strings.Contains(message, ContactMarker)
}

// ParseContactInfo extracts `Name: <value>` and `Email: <value>` lines from
// a contact-info message. Missing lines leave the corresponding field empty.
func ParseContactInfo(message string) ContactInfo {
	var info ContactInfo
	for _, line := range strings.Split(message, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "Name:"); ok {
			info.Name = strings.TrimSpace(v)
		} else if v, ok := strings.CutPrefix(line, "Email:"); ok {
			info.Email = strings.TrimSpace(v)
		}
	}
	return info
}
