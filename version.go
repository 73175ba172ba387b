package aesophia

const (
	PackageName      = "aesophia"
	PackageVersion   = "0.1.0"
	PackageCopyRight = PackageName + " " + PackageVersion + " Sophia contract interface toolchain"
)
