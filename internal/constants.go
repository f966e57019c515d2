package internal

const ApplicationName = "vulnsync"
