package version

var (
	// tag and commit values must be set via -ldflags, for example:
	// go build \
	//    -ldflags \
	//        -X github.com/hostvpc/vpcctl/pkg/version.tag=v1.2.3
	//        -X github.com/hostvpc/vpcctl/pkg/version.commit=abc123de567f
	//    ...
	tag    = ""
	commit = ""
)

// GetTag returns the version tag of this build.
func GetTag() string {
	return tag
}

// GetCommit returns the commit the current build is built from.
func GetCommit() string {
	return commit
}

// GetVersion returns the full version of tag and commit,
// e.g: v1.2.3-abc123de567f
func GetVersion() string {
	version := tag
	if len(version) == 0 {
		version = "dev"
	}
	if len(commit) > 0 {
		version += "-" + commit
	}

	return version
}
