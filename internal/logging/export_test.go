package logging

var NewLogger = newLogger
