package upload

// Version is the current version of the upload module.
const Version = "1.0.0"

// UserAgent is sent with every upload request.
const UserAgent = "towership/" + Version
