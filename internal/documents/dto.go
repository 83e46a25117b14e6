package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	DocumentID string    `json:"documentId"`
	Kind       Kind      `json:"kind"`
	FileName   string    `json:"fileName"`
	MimeType   string    `json:"mimeType"`
	SizeBytes  int64     `json:"sizeBytes"`
	TextChars  int       `json:"textChars"`
	UploadedAt time.Time `json:"uploadedAt"`
	Message    string    `json:"message"`
}

func toResponse(doc Document) DocumentResponse {
	msg := "Resume uploaded successfully!"
	if doc.Kind == KindJobDescription {
		msg = "Job description uploaded successfully!"
	}
	return DocumentResponse{
		DocumentID: doc.ID,
		Kind:       doc.Kind,
		FileName:   doc.FileName,
		MimeType:   doc.MimeType,
		SizeBytes:  doc.SizeBytes,
		TextChars:  len([]rune(doc.Text)),
		UploadedAt: doc.CreatedAt,
		Message:    msg,
	}
}
