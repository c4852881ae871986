package services

// Services defined in this package:
// - AuthService: Verifies operator credentials and issues session tokens
// - AttachmentService: Stores uploaded student documents and hands out references
// - StudentService: Creates, updates and queries student records
// - StudentExporter: Renders the roster as an xlsx workbook
