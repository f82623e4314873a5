package quest

const Version = "0.1.0"
